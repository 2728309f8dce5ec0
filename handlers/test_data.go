// Note: To generate test data, use:
// curl -X POST "http://localhost:8080/api/test/seed?count=5" -H "Content-Type: application/json"

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"incubator/portal/handlers/auth"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/lib/pq"
	"golang.org/x/exp/rand"
)

// SeedPassword is the password of every generated user.
const SeedPassword = "testpass123"

var seedRoles = []string{"STARTUP", "MENTOR", "COACH", "INVESTOR", "ALUMNI"}

var phaseNames = []string{"Ideation", "Validation", "Build", "Launch", "Scale"}

var taskNames = []string{
	"Problem statement", "Customer interviews", "Lean canvas", "Pitch deck",
	"MVP scope", "Prototype demo", "Pricing model", "Go-to-market plan",
	"Financial projections", "Investor one-pager",
}

var seedStatuses = []string{
	"PENDING", "SUBMITTED", "UNDER_REVIEW", "APPROVED", "NEEDS_REVISION",
	"REJECTED", "IN_PROGRESS", "COMPLETED",
}

var interests = []string{
	"Fundraising", "Product", "Hiring", "Marketing", "Sales", "Legal", "Engineering", "Design",
}

var investmentFocus = []string{
	"Fintech", "Healthtech", "Edtech", "Climate", "AI", "SaaS", "Marketplaces", "Deep tech",
}

// SeedUser is one generated account.
type SeedUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SeedResult summarises a seeding run.
type SeedResult struct {
	TenantID   int        `json:"tenantId"`
	Password   string     `json:"password"`
	Users      []SeedUser `json:"users"`
	TemplateID int        `json:"templateId"`
	RoomID     int        `json:"roomId"`
	Failed     int        `json:"failed"`
}

func pick(list []string) string {
	return list[rand.Intn(len(list))]
}

func pickN(list []string, n int) []string {
	out := append([]string(nil), list...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// SeedHandler fills one tenant with users of every role, a progress template
// with phases, tasks and submissions, a group chat, news and a landing page.
// Used by: POST /api/test/seed
func SeedHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := 2
		if countParam := r.URL.Query().Get("count"); countParam != "" {
			parsedCount, err := strconv.Atoi(countParam)
			if err != nil || parsedCount < 1 || parsedCount > 50 {
				auth.WriteError(w, http.StatusBadRequest, "Count must be between 1 and 50")
				return
			}
			count = parsedCount
		}

		result, err := Seed(r.Context(), db, count)
		if err != nil {
			log.Printf("Error seeding: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Could not generate test data")
			return
		}
		auth.WriteJSON(w, http.StatusCreated, result)
	}
}

// Seed generates count users per role (plus one tenant admin and one super
// admin) inside a single transaction. A user that fails to insert is rolled
// back to its savepoint and counted in Failed.
func Seed(ctx context.Context, db *sql.DB, count int) (*SeedResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	hashed, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return nil, err
	}

	var tenantID int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(tenant_id), 0) + 1 FROM users`).Scan(&tenantID); err != nil {
		return nil, fmt.Errorf("allocating tenant: %w", err)
	}
	res := &SeedResult{TenantID: tenantID, Password: SeedPassword}

	roles := []string{"TENANT_ADMIN"}
	for _, role := range seedRoles {
		for i := 0; i < count; i++ {
			roles = append(roles, role)
		}
	}

	byRole := map[string][]int{}
	for i, role := range roles {
		savepoint := fmt.Sprintf("user_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			return nil, fmt.Errorf("creating savepoint: %w", err)
		}

		u, err := seedUser(ctx, tx, role, &tenantID, hashed)
		if err != nil {
			log.Printf("[User %d] Error creating %s: %v", i+1, role, err)
			if pqErr, ok := err.(*pq.Error); ok {
				log.Printf("[User %d] Postgres error details: %s, code: %s, constraint: %s", i+1, pqErr.Detail, pqErr.Code, pqErr.Constraint)
			}
			tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint)
			res.Failed++
			continue
		}
		res.Users = append(res.Users, u)
		byRole[role] = append(byRole[role], u.ID)
	}

	// One platform-wide super admin, created once.
	var superID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, role, tenant_id, password_hash)
		VALUES ('superadmin@portal.local', 'Super Admin', 'SUPER_ADMIN', NULL, $1)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id
	`, hashed).Scan(&superID)
	if err != nil {
		return nil, fmt.Errorf("creating super admin: %w", err)
	}
	res.Users = append(res.Users, SeedUser{ID: superID, Email: "superadmin@portal.local", Role: "SUPER_ADMIN"})

	if res.TemplateID, err = seedProgress(ctx, tx, tenantID, byRole); err != nil {
		return nil, err
	}
	if res.RoomID, err = seedChat(ctx, tx, tenantID, res.Users); err != nil {
		return nil, err
	}
	if err := seedContent(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing seed: %w", err)
	}
	return res, nil
}

func seedUser(ctx context.Context, tx *sql.Tx, role string, tenantID *int, hashed string) (SeedUser, error) {
	if !auth.ValidRole(role) {
		return SeedUser{}, fmt.Errorf("seeding user: unknown role %q", role)
	}
	name := gofakeit.Name()
	email := strings.ToLower(fmt.Sprintf("%s.%d@%s", strings.ReplaceAll(name, " ", "."), gofakeit.Number(100, 999), gofakeit.DomainName()))

	var id int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, role, tenant_id, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, email, name, role, tenantID, hashed).Scan(&id)
	if err != nil {
		return SeedUser{}, err
	}

	switch role {
	case "ALUMNI":
		_, err = tx.ExecContext(ctx, `
			INSERT INTO alumni_profiles (user_id, startup_name, graduation_year, job_title, mentorship_interests, progress, linkedin_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, gofakeit.Company(), gofakeit.Number(2015, time.Now().Year()), gofakeit.JobTitle(),
			pq.Array(pickN(interests, gofakeit.Number(1, 3))), gofakeit.Number(0, 100),
			fmt.Sprintf("https://www.linkedin.com/in/%s", gofakeit.Username()))
	case "INVESTOR":
		ticketMin := gofakeit.Price(10000, 100000)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO investor_profiles (user_id, firm_name, investment_focus, ticket_size_min, ticket_size_max, portfolio_url)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, gofakeit.Company()+" Capital", pq.Array(pickN(investmentFocus, gofakeit.Number(1, 3))),
			ticketMin, ticketMin*gofakeit.Float64Range(2, 10), fmt.Sprintf("https://www.%s/portfolio", gofakeit.DomainName()))
	}
	if err != nil {
		return SeedUser{}, err
	}
	return SeedUser{ID: id, Email: email, Role: role}, nil
}

func seedProgress(ctx context.Context, tx *sql.Tx, tenantID int, byRole map[string][]int) (int, error) {
	var templateID int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO progress_templates (name, description, tenant_id)
		VALUES ($1, $2, $3) RETURNING id
	`, gofakeit.BuzzWord()+" Accelerator", gofakeit.Sentence(12), tenantID).Scan(&templateID)
	if err != nil {
		return 0, fmt.Errorf("creating template: %w", err)
	}

	mentors := byRole["MENTOR"]
	startups := byRole["STARTUP"]
	var admin int
	if ids := byRole["TENANT_ADMIN"]; len(ids) > 0 {
		admin = ids[0]
	}

	var taskIDs []int
	for i, phase := range phaseNames[:3] {
		var phaseID int
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO progress_phases (name, order_index, template_id) VALUES ($1, $2, $3) RETURNING id
		`, phase, i, templateID).Scan(&phaseID); err != nil {
			return 0, fmt.Errorf("creating phase: %w", err)
		}
		for _, task := range pickN(taskNames, 3) {
			var mentorID *int
			if len(mentors) > 0 {
				m := mentors[rand.Intn(len(mentors))]
				mentorID = &m
			}
			var taskID int
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO progress_tasks (task_name, description, due_days, phase_id, mentor_id)
				VALUES ($1, $2, $3, $4, $5) RETURNING id
			`, task, gofakeit.Sentence(8), gofakeit.Number(7, 60), phaseID, mentorID).Scan(&taskID); err != nil {
				return 0, fmt.Errorf("creating task: %w", err)
			}
			taskIDs = append(taskIDs, taskID)
		}
	}

	for _, startup := range startups {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO progress_assignments (template_id, assigned_to_id, assigned_to_type, assigned_by_id)
			VALUES ($1, $2, 'STARTUP', $3)
		`, templateID, startup, admin); err != nil {
			return 0, fmt.Errorf("creating assignment: %w", err)
		}
		for _, taskID := range taskIDs {
			if gofakeit.Bool() {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO progress_submissions (task_id, startup_id, user_id, status, score)
				VALUES ($1, $2, $2, $3, $4)
			`, taskID, startup, pick(seedStatuses), gofakeit.Float64Range(0, 10)); err != nil {
				return 0, fmt.Errorf("creating submission: %w", err)
			}
		}
	}
	return templateID, nil
}

func seedChat(ctx context.Context, tx *sql.Tx, tenantID int, users []SeedUser) (int, error) {
	var roomID int
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO chat_rooms (chat_name, chat_type, tenant_id) VALUES ($1, 'GROUP', $2) RETURNING id
	`, "Cohort "+gofakeit.Color(), tenantID).Scan(&roomID); err != nil {
		return 0, fmt.Errorf("creating room: %w", err)
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		if u.Role != "SUPER_ADMIN" {
			ids = append(ids, int64(u.ID))
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_room_users (room_id, user_id) SELECT $1, unnest($2::int[])
	`, roomID, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("adding room members: %w", err)
	}

	at := time.Now().Add(-time.Hour)
	for i := 0; i < 5 && len(ids) > 0; i++ {
		at = at.Add(time.Duration(rand.Intn(600)) * time.Second)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (room_id, sender_id, content, timestamp) VALUES ($1, $2, $3, $4)
		`, roomID, ids[rand.Intn(len(ids))], gofakeit.Sentence(rand.Intn(10)+3), at); err != nil {
			return 0, fmt.Errorf("creating message: %w", err)
		}
	}
	return roomID, nil
}

func seedContent(ctx context.Context, tx *sql.Tx, tenantID int) error {
	for i := 0; i < 3; i++ {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO news (title, content, tenant_id) VALUES ($1, $2, $3)
		`, gofakeit.HipsterSentence(5), gofakeit.Paragraph(2, 3, 12, " "), tenantID); err != nil {
			return fmt.Errorf("creating news: %w", err)
		}
	}

	company := gofakeit.Company()
	page := map[string]interface{}{
		"themeColor":  gofakeit.HexColor(),
		"themeColor2": gofakeit.HexColor(),
		"themeColor3": gofakeit.HexColor(),
		"sections": []map[string]interface{}{
			{"type": "HERO", "sectionOrder": 0, "contentJson": fmt.Sprintf(`{"title":%q,"subtitle":%q}`, company, gofakeit.Slogan())},
			{"type": "ABOUT", "sectionOrder": 1, "contentJson": fmt.Sprintf(`{"title":"About us","content":%q}`, gofakeit.Paragraph(1, 3, 10, " "))},
		},
		"socialLinks": map[string]string{"linkedin": "https://www.linkedin.com/company/" + gofakeit.Username()},
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO landing_pages (tenant_id, page) VALUES ($1, $2)
		ON CONFLICT (tenant_id) DO NOTHING
	`, tenantID, raw); err != nil {
		return fmt.Errorf("creating landing page: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO admin_requests (tenant_name, requester_email) VALUES ($1, $2)
	`, gofakeit.Company(), gofakeit.Email())
	if err != nil {
		return fmt.Errorf("creating admin request: %w", err)
	}
	return nil
}
