package progress

import (
	"strings"

	"incubator/portal/client/api"
)

// StatusStyle is how a submission status is shown.
type StatusStyle struct {
	Icon  string
	Color string
	Label string
}

var unknownStyle = StatusStyle{Icon: "○", Color: "gray", Label: "Not started"}

var statusStyles = map[api.SubmissionStatus]StatusStyle{
	api.StatusPending:       {Icon: "◔", Color: "yellow", Label: "Pending"},
	api.StatusSubmitted:     {Icon: "↑", Color: "blue", Label: "Submitted"},
	api.StatusUnderReview:   {Icon: "⧗", Color: "purple", Label: "Under review"},
	api.StatusApproved:      {Icon: "✔", Color: "green", Label: "Approved"},
	api.StatusNeedsRevision: {Icon: "↺", Color: "orange", Label: "Needs revision"},
	api.StatusRejected:      {Icon: "✘", Color: "red", Label: "Rejected"},
	api.StatusInProgress:    {Icon: "◑", Color: "blue", Label: "In progress"},
	api.StatusOverdue:       {Icon: "!", Color: "red", Label: "Overdue"},
	api.StatusCompleted:     {Icon: "●", Color: "green", Label: "Completed"},
}

// StyleFor looks status up case-insensitively; unknown values get the
// "not started" style.
func StyleFor(status string) StatusStyle {
	if s, ok := statusStyles[api.SubmissionStatus(strings.ToUpper(strings.TrimSpace(status)))]; ok {
		return s
	}
	return unknownStyle
}
