package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketOverridden    EventType = "ticket_overridden"
	EventNotificationCreated EventType = "notification_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	UserDivision    domain.Division   `json:"user_division"`
	Category        string            `json:"category"`
	TargetDivisions []domain.Division `json:"target_divisions"`
	Confidence      float64           `json:"confidence"`
	Title           string            `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketOverriddenPayload payload.
type TicketOverriddenPayload struct {
	OldDivision   domain.Division `json:"old_division"`
	NewDivision   domain.Division `json:"new_division"`
	Reason        *string         `json:"reason,omitempty"`
	FirstOverride bool            `json:"first_override"`
}

// NotificationCreatedPayload payload.
type NotificationCreatedPayload struct {
	NotificationID string                    `json:"notification_id"`
	RecipientID    string                    `json:"recipient_id"`
	RecipientEmail string                    `json:"recipient_email"`
	Reason         domain.NotificationReason `json:"reason"`
	Title          string                    `json:"title"`
	Message        string                    `json:"message"`
}
