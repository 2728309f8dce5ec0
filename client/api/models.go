package api

import "time"

// ChatType distinguishes one-to-one rooms from group rooms.
type ChatType string

const (
	ChatIndividual ChatType = "INDIVIDUAL"
	ChatGroup      ChatType = "GROUP"
)

// Participant is a chat room member or quick contact.
type Participant struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

type ChatRoom struct {
	ID              int           `json:"id"`
	ChatName        string        `json:"chatName"`
	ChatType        ChatType      `json:"chatType"`
	Users           []Participant `json:"users"`
	LastMessage     *string       `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time    `json:"lastMessageTime,omitempty"`
	UnreadCount     *int          `json:"unreadCount,omitempty"`
}

// CreateRoomRequest is the body of POST /api/chat-rooms.
type CreateRoomRequest struct {
	ChatName       string   `json:"chatName" validate:"notblank"`
	ChatType       ChatType `json:"chatType"`
	ParticipantIDs []int    `json:"participantIds" validate:"min=2"`
}

// SubmissionStatus is the review workflow state of a submission.
type SubmissionStatus string

const (
	StatusPending       SubmissionStatus = "PENDING"
	StatusSubmitted     SubmissionStatus = "SUBMITTED"
	StatusUnderReview   SubmissionStatus = "UNDER_REVIEW"
	StatusApproved      SubmissionStatus = "APPROVED"
	StatusNeedsRevision SubmissionStatus = "NEEDS_REVISION"
	StatusRejected      SubmissionStatus = "REJECTED"
	StatusInProgress    SubmissionStatus = "IN_PROGRESS"
	StatusOverdue       SubmissionStatus = "OVERDUE"
	StatusCompleted     SubmissionStatus = "COMPLETED"
)

type Template struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description"`
	TenantID    int    `json:"tenantId"`
}

type Phase struct {
	ID         int    `json:"id"`
	Name       string `json:"name" validate:"notblank"`
	OrderIndex int    `json:"orderIndex" validate:"gte=0"`
	TemplateID int    `json:"templateId" validate:"required"`
}

type Task struct {
	ID          int        `json:"id"`
	TaskName    string     `json:"taskName" validate:"notblank"`
	Description string     `json:"description"`
	DueDays     int        `json:"dueDays" validate:"gte=0"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	PhaseID     int        `json:"phaseId" validate:"required"`
	MentorID    *int       `json:"mentorId,omitempty"`
}

type Submission struct {
	ID                int              `json:"id"`
	TaskID            int              `json:"taskId" validate:"required"`
	StartupID         *int             `json:"startupId,omitempty"`
	UserID            *int             `json:"userId,omitempty"`
	Status            SubmissionStatus `json:"status"`
	MentorFeedback    *string          `json:"mentorFeedback,omitempty"`
	Score             *float64         `json:"score,omitempty"`
	SubmissionFileURL *string          `json:"submissionFileUrl,omitempty"`
	CreatedAt         *time.Time       `json:"createdAt,omitempty"`
}

// Review is the mentor verdict on a submission.
type Review struct {
	Status         SubmissionStatus `json:"status" validate:"required"`
	MentorFeedback string           `json:"mentorFeedback,omitempty"`
	Score          *float64         `json:"score,omitempty"`
}

type Assignment struct {
	ID             int    `json:"id"`
	TemplateID     int    `json:"templateId" validate:"required"`
	AssignedToID   int    `json:"assignedToId" validate:"required"`
	AssignedToType string `json:"assignedToType" validate:"notblank"`
	AssignedByID   int    `json:"assignedById"`
}

type News struct {
	ID               int        `json:"id"`
	Title            string     `json:"title" validate:"notblank"`
	Content          string     `json:"content"`
	ImageURL         *string    `json:"imageUrl,omitempty"`
	ReferenceFileURL *string    `json:"referenceFileUrl,omitempty"`
	TenantID         int        `json:"tenantId"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

type AlumniProfile struct {
	UserID              int      `json:"userId"`
	FullName            string   `json:"fullName"`
	Email               string   `json:"email"`
	StartupName         *string  `json:"startupName,omitempty"`
	GraduationYear      *int     `json:"graduationYear,omitempty"`
	CurrentRole         *string  `json:"currentRole,omitempty"`
	MentorshipInterests []string `json:"mentorshipInterests,omitempty"`
	Progress            *int     `json:"progress,omitempty"`
	LinkedInURL         *string  `json:"linkedinUrl,omitempty"`
}

type InvestorProfile struct {
	UserID          int      `json:"userId"`
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	FirmName        *string  `json:"firmName,omitempty"`
	InvestmentFocus []string `json:"investmentFocus,omitempty"`
	TicketSizeMin   *float64 `json:"ticketSizeMin,omitempty"`
	TicketSizeMax   *float64 `json:"ticketSizeMax,omitempty"`
	PortfolioURL    *string  `json:"portfolioUrl,omitempty"`
}

// AdminRequest is a tenant onboarding request reviewed by the super admin.
type AdminRequest struct {
	ID             int        `json:"id"`
	TenantName     string     `json:"tenantName"`
	RequesterEmail string     `json:"requesterEmail"`
	Status         string     `json:"status"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// SectionType names one of the nine landing-page section kinds.
type SectionType string

const (
	SectionHero         SectionType = "HERO"
	SectionAbout        SectionType = "ABOUT"
	SectionContact      SectionType = "CONTACT"
	SectionProjects     SectionType = "PROJECTS"
	SectionTestimonials SectionType = "TESTIMONIALS"
	SectionTeam         SectionType = "TEAM"
	SectionFAQ          SectionType = "FAQ"
	SectionGallery      SectionType = "GALLERY"
	SectionCustom       SectionType = "CUSTOM"
)

type Section struct {
	ID           *int        `json:"id,omitempty"`
	Type         SectionType `json:"type"`
	ContentJSON  string      `json:"contentJson"`
	SectionOrder int         `json:"sectionOrder"`
}

type LandingPage struct {
	ThemeColor  string            `json:"themeColor"`
	ThemeColor2 string            `json:"themeColor2"`
	ThemeColor3 string            `json:"themeColor3"`
	Sections    []Section         `json:"sections"`
	SocialLinks map[string]string `json:"socialLinks"`
}

// UploadResult is the server answer to any multipart upload.
type UploadResult struct {
	URL string `json:"url"`
}
