package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"incubator/portal/handlers/auth"

	"github.com/lib/pq"
)

func loadAlumni(ctx context.Context, db *sql.DB, userID int) (AlumniProfile, error) {
	var (
		p         AlumniProfile
		startup   sql.NullString
		gradYear  sql.NullInt64
		role      sql.NullString
		progress  sql.NullInt64
		linkedin  sql.NullString
		interests []string
	)
	err := db.QueryRowContext(ctx, SelectAlumniProfileQuery, userID).Scan(
		&p.UserID, &p.FullName, &p.Email,
		&startup, &gradYear, &role,
		pq.Array(&interests), &progress, &linkedin,
	)
	if err != nil {
		return p, err
	}
	if startup.Valid {
		p.StartupName = &startup.String
	}
	if gradYear.Valid {
		y := int(gradYear.Int64)
		p.GraduationYear = &y
	}
	if role.Valid {
		p.CurrentRole = &role.String
	}
	if progress.Valid {
		v := int(progress.Int64)
		p.Progress = &v
	}
	if linkedin.Valid {
		p.LinkedInURL = &linkedin.String
	}
	p.MentorshipInterests = interests
	return p, nil
}

func loadInvestor(ctx context.Context, db *sql.DB, userID int) (InvestorProfile, error) {
	var (
		p         InvestorProfile
		firm      sql.NullString
		focus     []string
		minTicket sql.NullFloat64
		maxTicket sql.NullFloat64
		portfolio sql.NullString
	)
	err := db.QueryRowContext(ctx, SelectInvestorProfileQuery, userID).Scan(
		&p.UserID, &p.FullName, &p.Email,
		&firm, pq.Array(&focus), &minTicket, &maxTicket, &portfolio,
	)
	if err != nil {
		return p, err
	}
	if firm.Valid {
		p.FirmName = &firm.String
	}
	if minTicket.Valid {
		p.TicketSizeMin = &minTicket.Float64
	}
	if maxTicket.Valid {
		p.TicketSizeMax = &maxTicket.Float64
	}
	if portfolio.Valid {
		p.PortfolioURL = &portfolio.String
	}
	p.InvestmentFocus = focus
	return p, nil
}

func writeProfile[T any](w http.ResponseWriter, v T, err error) {
	if err == sql.ErrNoRows {
		auth.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("Error loading profile: %v", err)
		auth.WriteError(w, http.StatusInternalServerError, "Database error")
		return
	}
	auth.WriteJSON(w, http.StatusOK, v)
}

// GetAlumniProfileHandler returns the caller's alumni profile
// Used by: GET /api/profile/alumni/me
func GetAlumniProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		p, err := loadAlumni(r.Context(), db, userID)
		writeProfile(w, p, err)
	}
}

// UpdateAlumniProfileHandler creates or replaces the caller's alumni profile
// Used by: PUT /api/profile/alumni/me
func UpdateAlumniProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var in AlumniProfile
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			auth.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if in.Progress != nil && (*in.Progress < 0 || *in.Progress > 100) {
			auth.WriteError(w, http.StatusBadRequest, "progress must be between 0 and 100")
			return
		}

		_, err = db.ExecContext(r.Context(), UpsertAlumniProfileQuery,
			userID, in.StartupName, in.GraduationYear, in.CurrentRole,
			pq.Array(in.MentorshipInterests), in.Progress, in.LinkedInURL)
		if err != nil {
			log.Printf("Error saving alumni profile for %d: %v", userID, err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		p, err := loadAlumni(r.Context(), db, userID)
		writeProfile(w, p, err)
	}
}

// GetInvestorProfileHandler returns the caller's investor profile
// Used by: GET /api/profile/investor/me
func GetInvestorProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		p, err := loadInvestor(r.Context(), db, userID)
		writeProfile(w, p, err)
	}
}

// UpdateInvestorProfileHandler creates or replaces the caller's investor profile
// Used by: PUT /api/profile/investor/me
func UpdateInvestorProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var in InvestorProfile
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			auth.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if in.TicketSizeMin != nil && in.TicketSizeMax != nil && *in.TicketSizeMin > *in.TicketSizeMax {
			auth.WriteError(w, http.StatusBadRequest, "ticketSizeMin must not exceed ticketSizeMax")
			return
		}

		_, err = db.ExecContext(r.Context(), UpsertInvestorProfileQuery,
			userID, in.FirmName, pq.Array(in.InvestmentFocus),
			in.TicketSizeMin, in.TicketSizeMax, in.PortfolioURL)
		if err != nil {
			log.Printf("Error saving investor profile for %d: %v", userID, err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		p, err := loadInvestor(r.Context(), db, userID)
		writeProfile(w, p, err)
	}
}
