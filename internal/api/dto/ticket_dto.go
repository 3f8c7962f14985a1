package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// OverrideRequest payload for manual reclassification.
type OverrideRequest struct {
	NewDivision string  `json:"new_division"`
	Reason      *string `json:"reason,omitempty"`
}

// TicketResponse is the full ticket view including classification, routing
// and the override audit trail.
type TicketResponse struct {
	ID              string                 `json:"id"`
	ExternalKey     string                 `json:"external_key"`
	RequesterID     string                 `json:"requester_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	ImageURL        *string                `json:"image_url,omitempty"`
	Status          domain.TicketStatus    `json:"status"`
	UserDivision    domain.Division        `json:"user_division"`
	Category        string                 `json:"nlp_category"`
	Confidence      float64                `json:"nlp_confidence"`
	ConfidenceLevel domain.ConfidenceLevel `json:"confidence_level"`
	Keywords        []string               `json:"nlp_keywords,omitempty"`
	TargetDivision  domain.Division        `json:"target_division"`
	TargetDivisions []domain.Division      `json:"target_divisions"`

	IsNLPOverridden     bool             `json:"is_nlp_overridden"`
	OriginalNLPDivision *domain.Division `json:"original_nlp_division,omitempty"`
	OverrideReason      *string          `json:"override_reason,omitempty"`
	OverriddenBy        *string          `json:"overridden_by,omitempty"`
	OverriddenAt        *time.Time       `json:"overridden_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketResponseFrom maps a domain ticket. The confidence level is derived
// here; it is presentation, not state.
func TicketResponseFrom(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                  ticket.ID,
		ExternalKey:         ticket.ExternalKey,
		RequesterID:         ticket.RequesterID,
		Title:               ticket.Title,
		Description:         ticket.Description,
		ImageURL:            ticket.ImageURL,
		Status:              ticket.Status,
		UserDivision:        ticket.UserDivision,
		Category:            ticket.Category,
		Confidence:          ticket.NLPConfidence,
		ConfidenceLevel:     domain.ConfidenceLevelOf(ticket.NLPConfidence),
		Keywords:            ticket.NLPKeywords,
		TargetDivision:      ticket.TargetDivision,
		TargetDivisions:     ticket.TargetDivisions,
		IsNLPOverridden:     ticket.IsNLPOverridden,
		OriginalNLPDivision: ticket.OriginalNLPDivision,
		OverrideReason:      ticket.OverrideReason,
		OverriddenBy:        ticket.OverriddenBy,
		OverriddenAt:        ticket.OverriddenAt,
		CreatedAt:           ticket.CreatedAt,
		UpdatedAt:           ticket.UpdatedAt,
	}
}

// StatsResponse reports ticket counts by status.
type StatsResponse struct {
	Counts map[domain.TicketStatus]int `json:"counts"`
	Total  int                         `json:"total"`
}
