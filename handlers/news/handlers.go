package news

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"incubator/portal/handlers/auth"
	"incubator/portal/handlers/media"

	"github.com/gorilla/mux"
)

// EditorRoles may publish news.
var EditorRoles = []string{"TENANT_ADMIN", "SUPER_ADMIN"}

type News struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	ReferenceFileURL *string   `json:"referenceFileUrl,omitempty"`
	TenantID         *int      `json:"tenantId"`
	CreatedAt        time.Time `json:"createdAt"`
}

const (
	newsColumns = `id, title, content, image_url, reference_file_url, tenant_id, created_at`

	SelectNewsQuery = `
		SELECT ` + newsColumns + `
		FROM news
		WHERE tenant_id IS NOT DISTINCT FROM $1 OR tenant_id IS NULL OR $2
		ORDER BY created_at DESC
	`
	InsertNewsQuery = `
		INSERT INTO news (title, content, image_url, reference_file_url, tenant_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + newsColumns
	UpdateNewsQuery = `
		UPDATE news SET title = $2, content = $3, image_url = $4, reference_file_url = $5
		WHERE id = $1
		RETURNING ` + newsColumns
	DeleteNewsQuery = `DELETE FROM news WHERE id = $1`
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNews(row scanner) (News, error) {
	var (
		n        News
		image    sql.NullString
		ref      sql.NullString
		tenantID sql.NullInt64
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &image, &ref, &tenantID, &n.CreatedAt); err != nil {
		return n, err
	}
	if image.Valid {
		n.ImageURL = &image.String
	}
	if ref.Valid {
		n.ReferenceFileURL = &ref.String
	}
	if tenantID.Valid {
		id := int(tenantID.Int64)
		n.TenantID = &id
	}
	return n, nil
}

// ListNewsHandler returns the caller's tenant news plus global news, newest first
// Used by: GET /api/v1/news
func ListNewsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		rows, err := db.QueryContext(r.Context(), SelectNewsQuery, claims.TenantID, claims.Role == "SUPER_ADMIN")
		if err != nil {
			log.Printf("Error listing news: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		items := []News{}
		for rows.Next() {
			n, err := scanNews(rows)
			if err != nil {
				auth.WriteError(w, http.StatusInternalServerError, "Database error")
				return
			}
			items = append(items, n)
		}
		auth.WriteJSON(w, http.StatusOK, items)
	}
}

func decodeNews(w http.ResponseWriter, r *http.Request) (News, bool) {
	var n News
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		auth.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return n, false
	}
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		auth.WriteError(w, http.StatusBadRequest, "title is required")
		return n, false
	}
	return n, true
}

func writeRow(w http.ResponseWriter, status int, n News, err error) {
	if err == sql.ErrNoRows {
		auth.WriteError(w, http.StatusNotFound, "News not found")
		return
	}
	if err != nil {
		log.Printf("Error saving news: %v", err)
		auth.WriteError(w, http.StatusInternalServerError, "Database error")
		return
	}
	auth.WriteJSON(w, status, n)
}

// CreateNewsHandler publishes news for the caller's tenant
// Used by: POST /api/v1/news
func CreateNewsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		in, ok := decodeNews(w, r)
		if !ok {
			return
		}
		n, err := scanNews(db.QueryRowContext(r.Context(), InsertNewsQuery,
			in.Title, in.Content, in.ImageURL, in.ReferenceFileURL, claims.TenantID))
		writeRow(w, http.StatusCreated, n, err)
	}
}

// UpdateNewsHandler replaces a news item
// Used by: PUT /api/v1/news/{id}
func UpdateNewsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			auth.WriteError(w, http.StatusBadRequest, "Invalid id")
			return
		}
		in, ok := decodeNews(w, r)
		if !ok {
			return
		}
		n, err := scanNews(db.QueryRowContext(r.Context(), UpdateNewsQuery,
			id, in.Title, in.Content, in.ImageURL, in.ReferenceFileURL))
		writeRow(w, http.StatusOK, n, err)
	}
}

// DeleteNewsHandler removes a news item
// Used by: DELETE /api/v1/news/{id}
func DeleteNewsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			auth.WriteError(w, http.StatusBadRequest, "Invalid id")
			return
		}
		res, err := db.ExecContext(r.Context(), DeleteNewsQuery, id)
		if err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			auth.WriteError(w, http.StatusNotFound, "News not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UploadHandler stores a news image (kind=image) or reference document (kind=reference)
// Used by: POST /api/v1/news/upload
func UploadHandler() http.HandlerFunc {
	images := media.UploadHandler("news/images", media.ImageTypes)
	files := media.UploadHandler("news/files", media.DocumentTypes)
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.FormValue("kind")
		if kind == "" {
			kind = r.URL.Query().Get("kind")
		}
		switch kind {
		case "", "image":
			images(w, r)
		case "reference", "file":
			files(w, r)
		default:
			auth.WriteError(w, http.StatusBadRequest, "kind must be image or reference")
		}
	}
}

// Routes mounts the news endpoints on r (already authenticated).
func Routes(r *mux.Router, db *sql.DB) {
	editor := auth.RequireRole(EditorRoles...)
	r.HandleFunc("", ListNewsHandler(db)).Methods("GET", "OPTIONS")
	r.Handle("", editor(CreateNewsHandler(db))).Methods("POST", "OPTIONS")
	r.Handle("/upload", editor(UploadHandler())).Methods("POST", "OPTIONS")
	r.Handle("/{id:[0-9]+}", editor(UpdateNewsHandler(db))).Methods("PUT", "OPTIONS")
	r.Handle("/{id:[0-9]+}", editor(DeleteNewsHandler(db))).Methods("DELETE", "OPTIONS")
}
