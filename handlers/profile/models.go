package profile

// AlumniProfile is the profile of a graduated startup founder
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

// InvestorProfile is the profile of an investor following the incubator
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
