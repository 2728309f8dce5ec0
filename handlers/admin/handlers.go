package admin

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"time"

	"incubator/portal/handlers/auth"

	"github.com/gorilla/mux"
)

// Request is a tenant onboarding request
type Request struct {
	ID             int       `json:"id"`
	TenantName     string    `json:"tenantName"`
	RequesterEmail string    `json:"requesterEmail"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

const (
	SelectRequestsQuery = `
		SELECT id, tenant_name, requester_email, status, created_at
		FROM admin_requests
		ORDER BY created_at DESC
	`
	// SetRequestStatusQuery only moves PENDING requests
	SetRequestStatusQuery = `
		UPDATE admin_requests SET status = $2
		WHERE id = $1 AND status = 'PENDING'
	`
)

// ListRequestsHandler lists every onboarding request
// Used by: GET /api/admin/requests
func ListRequestsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(), SelectRequestsQuery)
		if err != nil {
			log.Printf("Error listing admin requests: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		out := []Request{}
		for rows.Next() {
			var req Request
			if err := rows.Scan(&req.ID, &req.TenantName, &req.RequesterEmail, &req.Status, &req.CreatedAt); err != nil {
				auth.WriteError(w, http.StatusInternalServerError, "Database error")
				return
			}
			out = append(out, req)
		}
		auth.WriteJSON(w, http.StatusOK, out)
	}
}

// DecideHandler approves or rejects a pending request
// Used by: POST /api/admin/requests/{id}/approve, POST /api/admin/requests/{id}/reject
func DecideHandler(db *sql.DB, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			auth.WriteError(w, http.StatusBadRequest, "Invalid id")
			return
		}
		res, err := db.ExecContext(r.Context(), SetRequestStatusQuery, id, status)
		if err != nil {
			log.Printf("Error updating admin request %d: %v", id, err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			auth.WriteError(w, http.StatusNotFound, "No pending request with that id")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Routes mounts the super-admin endpoints on r (already authenticated).
func Routes(r *mux.Router, db *sql.DB) {
	r.Use(auth.RequireRole("SUPER_ADMIN"))
	r.HandleFunc("/requests", ListRequestsHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/requests/{id:[0-9]+}/approve", DecideHandler(db, "APPROVED")).Methods("POST", "OPTIONS")
	r.HandleFunc("/requests/{id:[0-9]+}/reject", DecideHandler(db, "REJECTED")).Methods("POST", "OPTIONS")
}
