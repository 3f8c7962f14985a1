package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateMappingRequest payload.
type CreateMappingRequest struct {
	NLPCategory    string `json:"nlp_category"`
	TargetDivision string `json:"target_division"`
}

// SetMappingActiveRequest payload.
type SetMappingActiveRequest struct {
	Active bool `json:"is_active"`
}

// MappingResponse is one routing rule.
type MappingResponse struct {
	ID             int64           `json:"id"`
	NLPCategory    string          `json:"nlp_category"`
	TargetDivision domain.Division `json:"target_division"`
	Active         bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MappingResponseFrom maps a domain mapping.
func MappingResponseFrom(mapping *domain.CategoryDivisionMapping) MappingResponse {
	return MappingResponse{
		ID:             mapping.ID,
		NLPCategory:    mapping.NLPCategory,
		TargetDivision: mapping.TargetDivision,
		Active:         mapping.Active,
		CreatedAt:      mapping.CreatedAt,
		UpdatedAt:      mapping.UpdatedAt,
	}
}
