package domain

import "time"

// NotificationReason tags why a recipient was included for a ticket.
type NotificationReason string

const (
	ReasonUserDivision NotificationReason = "user_division"
	ReasonNLPCategory  NotificationReason = "nlp_category"
	ReasonSuperAdmin   NotificationReason = "super_admin"
)

// Notification is one admin-facing alert for one ticket. At most one row
// exists per (recipient, ticket) pair; the first resolved reason wins.
type Notification struct {
	ID          string
	RecipientID string
	TicketID    string
	SubmitterID string
	Title       string
	Message     string
	Reason      NotificationReason
	IsRead      bool
	CreatedAt   time.Time
}
