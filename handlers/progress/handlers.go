package progress

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"incubator/portal/handlers/auth"
	"incubator/portal/handlers/media"

	"github.com/gorilla/mux"
)

// ReviewerRoles may review submissions.
var ReviewerRoles = []string{"MENTOR", "COACH", "FACILITATOR", "TENANT_ADMIN", "SUPER_ADMIN"}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row scanner) (Template, error) {
	var t Template
	var tenantID sql.NullInt64
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &tenantID); err != nil {
		return t, err
	}
	if tenantID.Valid {
		id := int(tenantID.Int64)
		t.TenantID = &id
	}
	return t, nil
}

func scanPhase(row scanner) (Phase, error) {
	var p Phase
	err := row.Scan(&p.ID, &p.Name, &p.OrderIndex, &p.TemplateID)
	return p, err
}

func scanTask(row scanner) (Task, error) {
	var t Task
	var dueDate sql.NullTime
	var mentorID sql.NullInt64
	if err := row.Scan(&t.ID, &t.TaskName, &t.Description, &t.DueDays, &dueDate, &t.PhaseID, &mentorID); err != nil {
		return t, err
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if mentorID.Valid {
		id := int(mentorID.Int64)
		t.MentorID = &id
	}
	return t, nil
}

func scanSubmission(row scanner) (Submission, error) {
	var (
		s         Submission
		startupID sql.NullInt64
		userID    sql.NullInt64
		feedback  sql.NullString
		score     sql.NullFloat64
		fileURL   sql.NullString
		createdAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.TaskID, &startupID, &userID, &s.Status, &feedback, &score, &fileURL, &createdAt); err != nil {
		return s, err
	}
	if startupID.Valid {
		id := int(startupID.Int64)
		s.StartupID = &id
	}
	if userID.Valid {
		id := int(userID.Int64)
		s.UserID = &id
	}
	if feedback.Valid {
		s.MentorFeedback = &feedback.String
	}
	if score.Valid {
		s.Score = &score.Float64
	}
	if fileURL.Valid {
		s.SubmissionFileURL = &fileURL.String
	}
	if createdAt.Valid {
		s.CreatedAt = &createdAt.Time
	}
	return s, nil
}

func scanAssignment(row scanner) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.TemplateID, &a.AssignedToID, &a.AssignedToType, &a.AssignedByID)
	return a, err
}

// listHandler runs a query and scans every row with scan.
func listHandler[T any](db *sql.DB, scan func(scanner) (T, error), args func(r *http.Request, c *auth.Claims) []interface{}, query string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		rows, err := db.QueryContext(r.Context(), query, args(r, claims)...)
		if err != nil {
			log.Printf("Error running list query: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		out := []T{}
		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				log.Printf("Error scanning row: %v", err)
				auth.WriteError(w, http.StatusInternalServerError, "Database error")
				return
			}
			out = append(out, v)
		}
		if err := rows.Err(); err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		auth.WriteJSON(w, http.StatusOK, out)
	}
}

// rowHandler answers with the single row returned by query.
func rowHandler[T any](w http.ResponseWriter, r *http.Request, db *sql.DB, status int, scan func(scanner) (T, error), query string, args ...interface{}) {
	v, err := scan(db.QueryRowContext(r.Context(), query, args...))
	if err == sql.ErrNoRows {
		auth.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		log.Printf("Error running row query: %v", err)
		auth.WriteError(w, http.StatusInternalServerError, "Database error")
		return
	}
	auth.WriteJSON(w, status, v)
}

func deleteHandler(db *sql.DB, query string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		res, err := db.ExecContext(r.Context(), query, id)
		if err != nil {
			log.Printf("Error deleting %d: %v", id, err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			auth.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		auth.WriteError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		auth.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func isSuperAdmin(c *auth.Claims) bool { return c.Role == "SUPER_ADMIN" }

// Templates

func ListTemplatesHandler(db *sql.DB) http.HandlerFunc {
	return listHandler(db, scanTemplate, func(r *http.Request, c *auth.Claims) []interface{} {
		return []interface{}{c.TenantID, isSuperAdmin(c)}
	}, SelectTemplatesQuery)
}

func GetTemplateHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := pathID(w, r); ok {
			rowHandler(w, r, db, http.StatusOK, scanTemplate, SelectTemplateQuery, id)
		}
	}
}

func CreateTemplateHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var t Template
		if !decode(w, r, &t) {
			return
		}
		if strings.TrimSpace(t.Name) == "" {
			auth.WriteError(w, http.StatusBadRequest, "name is required")
			return
		}
		rowHandler(w, r, db, http.StatusCreated, scanTemplate, InsertTemplateQuery, strings.TrimSpace(t.Name), t.Description, claims.TenantID)
	}
}

func UpdateTemplateHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var t Template
		if !decode(w, r, &t) {
			return
		}
		if strings.TrimSpace(t.Name) == "" {
			auth.WriteError(w, http.StatusBadRequest, "name is required")
			return
		}
		rowHandler(w, r, db, http.StatusOK, scanTemplate, UpdateTemplateQuery, id, strings.TrimSpace(t.Name), t.Description)
	}
}

func DeleteTemplateHandler(db *sql.DB) http.HandlerFunc {
	return deleteHandler(db, DeleteTemplateQuery)
}

// Phases

func ListPhasesHandler(db *sql.DB) http.HandlerFunc {
	return listHandler(db, scanPhase, func(r *http.Request, c *auth.Claims) []interface{} {
		return []interface{}{queryInt(r, "templateId")}
	}, SelectPhasesQuery)
}

func GetPhaseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := pathID(w, r); ok {
			rowHandler(w, r, db, http.StatusOK, scanPhase, SelectPhaseQuery, id)
		}
	}
}

func validPhase(w http.ResponseWriter, p Phase) bool {
	switch {
	case strings.TrimSpace(p.Name) == "":
		auth.WriteError(w, http.StatusBadRequest, "name is required")
	case p.TemplateID == 0:
		auth.WriteError(w, http.StatusBadRequest, "templateId is required")
	case p.OrderIndex < 0:
		auth.WriteError(w, http.StatusBadRequest, "orderIndex must be 0 or greater")
	default:
		return true
	}
	return false
}

func CreatePhaseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Phase
		if !decode(w, r, &p) || !validPhase(w, p) {
			return
		}
		rowHandler(w, r, db, http.StatusCreated, scanPhase, InsertPhaseQuery, strings.TrimSpace(p.Name), p.OrderIndex, p.TemplateID)
	}
}

func UpdatePhaseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var p Phase
		if !decode(w, r, &p) || !validPhase(w, p) {
			return
		}
		rowHandler(w, r, db, http.StatusOK, scanPhase, UpdatePhaseQuery, id, strings.TrimSpace(p.Name), p.OrderIndex, p.TemplateID)
	}
}

func DeletePhaseHandler(db *sql.DB) http.HandlerFunc {
	return deleteHandler(db, DeletePhaseQuery)
}

// Tasks

func ListTasksHandler(db *sql.DB) http.HandlerFunc {
	return listHandler(db, scanTask, func(r *http.Request, c *auth.Claims) []interface{} {
		return []interface{}{queryInt(r, "templateId"), queryInt(r, "phaseId")}
	}, SelectTasksQuery)
}

func GetTaskHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := pathID(w, r); ok {
			rowHandler(w, r, db, http.StatusOK, scanTask, SelectTaskQuery, id)
		}
	}
}

func validTask(w http.ResponseWriter, t Task) bool {
	switch {
	case strings.TrimSpace(t.TaskName) == "":
		auth.WriteError(w, http.StatusBadRequest, "taskName is required")
	case t.PhaseID == 0:
		auth.WriteError(w, http.StatusBadRequest, "phaseId is required")
	case t.DueDays < 0:
		auth.WriteError(w, http.StatusBadRequest, "dueDays must be 0 or greater")
	default:
		return true
	}
	return false
}

func CreateTaskHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t Task
		if !decode(w, r, &t) || !validTask(w, t) {
			return
		}
		rowHandler(w, r, db, http.StatusCreated, scanTask, InsertTaskQuery,
			strings.TrimSpace(t.TaskName), t.Description, t.DueDays, t.DueDate, t.PhaseID, t.MentorID)
	}
}

func UpdateTaskHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var t Task
		if !decode(w, r, &t) || !validTask(w, t) {
			return
		}
		rowHandler(w, r, db, http.StatusOK, scanTask, UpdateTaskQuery,
			id, strings.TrimSpace(t.TaskName), t.Description, t.DueDays, t.DueDate, t.PhaseID, t.MentorID)
	}
}

func DeleteTaskHandler(db *sql.DB) http.HandlerFunc {
	return deleteHandler(db, DeleteTaskQuery)
}

// Submissions

// ListSubmissionsHandler shows startups only their own submissions.
func ListSubmissionsHandler(db *sql.DB) http.HandlerFunc {
	return listHandler(db, scanSubmission, func(r *http.Request, c *auth.Claims) []interface{} {
		owner := 0
		if c.Role == "STARTUP" || c.Role == "ALUMNI" {
			owner = c.UserID
		}
		return []interface{}{queryInt(r, "templateId"), owner}
	}, SelectSubmissionsQuery)
}

func GetSubmissionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := pathID(w, r); ok {
			rowHandler(w, r, db, http.StatusOK, scanSubmission, SelectSubmissionQuery, id)
		}
	}
}

func CreateSubmissionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var s Submission
		if !decode(w, r, &s) {
			return
		}
		if s.TaskID == 0 {
			auth.WriteError(w, http.StatusBadRequest, "taskId is required")
			return
		}
		if s.Status == "" {
			s.Status = "SUBMITTED"
		}
		if !Statuses[s.Status] {
			auth.WriteError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		startupID := s.StartupID
		if startupID == nil {
			startupID = &claims.UserID
		}
		rowHandler(w, r, db, http.StatusCreated, scanSubmission, InsertSubmissionQuery,
			s.TaskID, startupID, claims.UserID, s.Status, s.SubmissionFileURL)
	}
}

func UpdateSubmissionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var s Submission
		if !decode(w, r, &s) {
			return
		}
		if s.TaskID == 0 || !Statuses[s.Status] {
			auth.WriteError(w, http.StatusBadRequest, "taskId and a valid status are required")
			return
		}
		rowHandler(w, r, db, http.StatusOK, scanSubmission, UpdateSubmissionQuery, id, s.TaskID, s.Status, s.SubmissionFileURL)
	}
}

// ReviewSubmissionHandler records a mentor verdict
// Used by: PUT /api/progresstracking/submissions/{id}/review
func ReviewSubmissionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var rv Review
		if !decode(w, r, &rv) {
			return
		}
		if !Statuses[rv.Status] {
			auth.WriteError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		var feedback *string
		if strings.TrimSpace(rv.MentorFeedback) != "" {
			feedback = &rv.MentorFeedback
		}
		rowHandler(w, r, db, http.StatusOK, scanSubmission, ReviewSubmissionQuery, id, rv.Status, feedback, rv.Score)
	}
}

// UploadSubmissionFileHandler attaches a document to a submission
// Used by: POST /api/progresstracking/submissions/{id}/file
func UploadSubmissionFileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		url, err := media.Save(r, "submissions", media.DocumentTypes)
		if err != nil {
			media.WriteUploadError(w, err)
			return
		}
		rowHandler(w, r, db, http.StatusOK, scanSubmission, SetSubmissionFileQuery, id, url)
	}
}

func DeleteSubmissionHandler(db *sql.DB) http.HandlerFunc {
	return deleteHandler(db, DeleteSubmissionQuery)
}

// Assignments

func ListAssignmentsHandler(db *sql.DB) http.HandlerFunc {
	return listHandler(db, scanAssignment, func(r *http.Request, c *auth.Claims) []interface{} {
		return []interface{}{c.TenantID, isSuperAdmin(c)}
	}, SelectAssignmentsQuery)
}

func validAssignment(w http.ResponseWriter, a Assignment) bool {
	if a.TemplateID == 0 || a.AssignedToID == 0 || strings.TrimSpace(a.AssignedToType) == "" {
		auth.WriteError(w, http.StatusBadRequest, "templateId, assignedToId and assignedToType are required")
		return false
	}
	return true
}

func CreateAssignmentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var a Assignment
		if !decode(w, r, &a) || !validAssignment(w, a) {
			return
		}
		rowHandler(w, r, db, http.StatusCreated, scanAssignment, InsertAssignmentQuery,
			a.TemplateID, a.AssignedToID, strings.ToUpper(a.AssignedToType), claims.UserID)
	}
}

func UpdateAssignmentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var a Assignment
		if !decode(w, r, &a) || !validAssignment(w, a) {
			return
		}
		rowHandler(w, r, db, http.StatusOK, scanAssignment, UpdateAssignmentQuery,
			id, a.TemplateID, a.AssignedToID, strings.ToUpper(a.AssignedToType))
	}
}

func DeleteAssignmentHandler(db *sql.DB) http.HandlerFunc {
	return deleteHandler(db, DeleteAssignmentQuery)
}

// Routes mounts every progress-tracking endpoint on r (already authenticated).
func Routes(r *mux.Router, db *sql.DB) {
	r.HandleFunc("/templates", ListTemplatesHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/templates", CreateTemplateHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/templates/{id:[0-9]+}", GetTemplateHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/templates/{id:[0-9]+}", UpdateTemplateHandler(db)).Methods("PUT", "OPTIONS")
	r.HandleFunc("/templates/{id:[0-9]+}", DeleteTemplateHandler(db)).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/phases", ListPhasesHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/phases", CreatePhaseHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/phases/{id:[0-9]+}", GetPhaseHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/phases/{id:[0-9]+}", UpdatePhaseHandler(db)).Methods("PUT", "OPTIONS")
	r.HandleFunc("/phases/{id:[0-9]+}", DeletePhaseHandler(db)).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/tasks", ListTasksHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/tasks", CreateTaskHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/tasks/{id:[0-9]+}", GetTaskHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/tasks/{id:[0-9]+}", UpdateTaskHandler(db)).Methods("PUT", "OPTIONS")
	r.HandleFunc("/tasks/{id:[0-9]+}", DeleteTaskHandler(db)).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/submissions", ListSubmissionsHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/submissions", CreateSubmissionHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/submissions/{id:[0-9]+}", GetSubmissionHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/submissions/{id:[0-9]+}", UpdateSubmissionHandler(db)).Methods("PUT", "OPTIONS")
	r.HandleFunc("/submissions/{id:[0-9]+}", DeleteSubmissionHandler(db)).Methods("DELETE", "OPTIONS")
	r.Handle("/submissions/{id:[0-9]+}/review", auth.RequireRole(ReviewerRoles...)(ReviewSubmissionHandler(db))).Methods("PUT", "OPTIONS")
	r.HandleFunc("/submissions/{id:[0-9]+}/file", UploadSubmissionFileHandler(db)).Methods("POST", "OPTIONS")

	r.HandleFunc("/assignments", ListAssignmentsHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/assignments", CreateAssignmentHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/assignments/{id:[0-9]+}", UpdateAssignmentHandler(db)).Methods("PUT", "OPTIONS")
	r.HandleFunc("/assignments/{id:[0-9]+}", DeleteAssignmentHandler(db)).Methods("DELETE", "OPTIONS")
}
