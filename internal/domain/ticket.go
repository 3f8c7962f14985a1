package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ConfidenceLevel buckets a classifier confidence score for display and
// reporting. It never participates in routing decisions.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceLevelOf maps a confidence score to its display bucket.
func ConfidenceLevelOf(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.7:
		return ConfidenceHigh
	case confidence >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Ticket is the aggregate for helpdesk requests. Override audit fields are
// write-once with the exception of the latest override metadata: once a ticket
// leaves the automatic state, OriginalNLPDivision is never changed again.
type Ticket struct {
	ID          string
	ExternalKey string
	RequesterID string
	Title       string
	Description string
	ImageURL    *string
	Status      TicketStatus

	// Classification and routing result, materialized at creation time.
	UserDivision    Division
	Category        string
	NLPConfidence   float64
	NLPKeywords     []string
	TargetDivision  Division
	TargetDivisions []Division

	// Manual override audit trail.
	IsNLPOverridden     bool
	OriginalNLPDivision *Division
	OverrideReason      *string
	OverriddenBy        *string
	OverriddenAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

var allowedStatusTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusNew:        {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:     {},
}

// IsValidStatusTransition reports whether a ticket may move between states.
func IsValidStatusTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedStatusTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
