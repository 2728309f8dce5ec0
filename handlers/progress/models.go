package progress

import "time"

type Template struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TenantID    *int   `json:"tenantId"`
}

type Phase struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"orderIndex"`
	TemplateID int    `json:"templateId"`
}

type Task struct {
	ID          int        `json:"id"`
	TaskName    string     `json:"taskName"`
	Description string     `json:"description"`
	DueDays     int        `json:"dueDays"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	PhaseID     int        `json:"phaseId"`
	MentorID    *int       `json:"mentorId,omitempty"`
}

type Submission struct {
	ID                int        `json:"id"`
	TaskID            int        `json:"taskId"`
	StartupID         *int       `json:"startupId,omitempty"`
	UserID            *int       `json:"userId,omitempty"`
	Status            string     `json:"status"`
	MentorFeedback    *string    `json:"mentorFeedback,omitempty"`
	Score             *float64   `json:"score,omitempty"`
	SubmissionFileURL *string    `json:"submissionFileUrl,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
}

type Review struct {
	Status         string   `json:"status"`
	MentorFeedback string   `json:"mentorFeedback"`
	Score          *float64 `json:"score"`
}

type Assignment struct {
	ID             int    `json:"id"`
	TemplateID     int    `json:"templateId"`
	AssignedToID   int    `json:"assignedToId"`
	AssignedToType string `json:"assignedToType"`
	AssignedByID   int    `json:"assignedById"`
}

// Statuses accepted by the review workflow.
var Statuses = map[string]bool{
	"PENDING":        true,
	"SUBMITTED":      true,
	"UNDER_REVIEW":   true,
	"APPROVED":       true,
	"NEEDS_REVISION": true,
	"REJECTED":       true,
	"IN_PROGRESS":    true,
	"OVERDUE":        true,
	"COMPLETED":      true,
}
