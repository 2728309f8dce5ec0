package landing

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"incubator/portal/handlers/auth"
	"incubator/portal/handlers/media"

	"github.com/gorilla/mux"
)

// SectionTypes accepted in a saved page.
var SectionTypes = map[string]bool{
	"HERO": true, "ABOUT": true, "CONTACT": true, "PROJECTS": true, "TESTIMONIALS": true,
	"TEAM": true, "FAQ": true, "GALLERY": true, "CUSTOM": true,
}

type Section struct {
	ID           *int   `json:"id,omitempty"`
	Type         string `json:"type"`
	ContentJSON  string `json:"contentJson"`
	SectionOrder int    `json:"sectionOrder"`
}

type Page struct {
	ThemeColor  string            `json:"themeColor"`
	ThemeColor2 string            `json:"themeColor2"`
	ThemeColor3 string            `json:"themeColor3"`
	Sections    []Section         `json:"sections"`
	SocialLinks map[string]string `json:"socialLinks"`
}

const (
	SelectPageQuery = `SELECT page FROM landing_pages WHERE tenant_id = $1`
	UpsertPageQuery = `
		INSERT INTO landing_pages (tenant_id, page, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (tenant_id) DO UPDATE SET page = EXCLUDED.page, updated_at = CURRENT_TIMESTAMP
	`
)

func emptyPage() Page {
	return Page{
		ThemeColor:  "#1e3a8a",
		ThemeColor2: "#3b82f6",
		ThemeColor3: "#f59e0b",
		Sections:    []Section{},
		SocialLinks: map[string]string{},
	}
}

// Validate checks section types and that every content is a JSON object.
func (p *Page) Validate() string {
	for i, s := range p.Sections {
		if !SectionTypes[s.Type] {
			return "unknown section type " + s.Type
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(s.ContentJSON), &obj); err != nil || obj == nil {
			return "section " + s.Type + " content must be a JSON object"
		}
		p.Sections[i].SectionOrder = i
	}
	return ""
}

func tenantOf(w http.ResponseWriter, r *http.Request) (int, bool) {
	claims, err := auth.GetClaimsFromToken(r)
	if err != nil {
		auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	if claims.TenantID == nil {
		auth.WriteError(w, http.StatusForbidden, "No tenant")
		return 0, false
	}
	return *claims.TenantID, true
}

// GetPageHandler returns the tenant landing page, or a blank one
// Used by: GET /api/landing-page
func GetPageHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := tenantOf(w, r)
		if !ok {
			return
		}
		var raw []byte
		err := db.QueryRowContext(r.Context(), SelectPageQuery, tenantID).Scan(&raw)
		if err == sql.ErrNoRows {
			auth.WriteJSON(w, http.StatusOK, emptyPage())
			return
		}
		if err != nil {
			log.Printf("Error loading landing page for tenant %d: %v", tenantID, err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		page := emptyPage()
		if err := json.Unmarshal(raw, &page); err != nil {
			log.Printf("Corrupt landing page for tenant %d: %v", tenantID, err)
			auth.WriteError(w, http.StatusInternalServerError, "Corrupt landing page")
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// SavePageHandler overwrites the tenant landing page
// Used by: PUT /api/landing-page
func SavePageHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := tenantOf(w, r)
		if !ok {
			return
		}
		var page Page
		if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
			auth.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if page.Sections == nil {
			page.Sections = []Section{}
		}
		if page.SocialLinks == nil {
			page.SocialLinks = map[string]string{}
		}
		for k := range page.SocialLinks {
			if strings.TrimSpace(k) == "" {
				delete(page.SocialLinks, k)
			}
		}
		if msg := page.Validate(); msg != "" {
			auth.WriteError(w, http.StatusBadRequest, msg)
			return
		}

		raw, err := json.Marshal(page)
		if err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "Encoding error")
			return
		}
		if _, err := db.ExecContext(r.Context(), UpsertPageQuery, tenantID, raw); err != nil {
			log.Printf("Error saving landing page for tenant %d: %v", tenantID, err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// Routes mounts the landing page endpoints on r (already authenticated).
func Routes(r *mux.Router, db *sql.DB) {
	editor := auth.RequireRole("TENANT_ADMIN", "SUPER_ADMIN")
	r.HandleFunc("", GetPageHandler(db)).Methods("GET", "OPTIONS")
	r.Handle("", editor(SavePageHandler(db))).Methods("PUT", "OPTIONS")
	r.Handle("/images", editor(media.UploadHandler("landing", media.ImageTypes))).Methods("POST", "OPTIONS")
}
