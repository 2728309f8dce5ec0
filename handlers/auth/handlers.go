package auth

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles accepted by the portal.
var Roles = []string{"SUPER_ADMIN", "TENANT_ADMIN", "STARTUP", "MENTOR", "COACH", "FACILITATOR", "INVESTOR", "ALUMNI"}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	TenantID  *int      `json:"tenantId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// WriteError writes {"message": msg}, the shape the portal client reads.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// LoginHandler handles user authentication
// Used by: /api/auth/login
// Response: LoginResponse
func LoginHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loginRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var user User
		var hashedPassword string
		var tenantID sql.NullInt64
		query := `SELECT id, email, full_name, role, tenant_id, password_hash FROM users WHERE lower(email) = lower($1)`
		err := db.QueryRowContext(r.Context(), query, strings.TrimSpace(loginRequest.Email)).
			Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &tenantID, &hashedPassword)
		if err == sql.ErrNoRows {
			WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			log.Printf("Error loading user %s: %v", loginRequest.Email, err)
			WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if tenantID.Valid {
			tid := int(tenantID.Int64)
			user.TenantID = &tid
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(loginRequest.Password)); err != nil {
			WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := GenerateToken(user)
		if err != nil {
			log.Printf("Error generating token for user %d: %v", user.ID, err)
			WriteError(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}
