package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// MappingInvalidator drops cached routes for a category after a write.
type MappingInvalidator interface {
	Invalidate(ctx context.Context, category string)
}

// MappingService manages category to division routing rules. Writes go to the
// table and then invalidate the cache; in-flight routing decisions keep the
// rules they already read.
type MappingService struct {
	mappings repository.MappingRepository
	cache    MappingInvalidator
	logger   *zap.Logger
}

// NewMappingService builds the service. cache may be nil when routing reads
// the table directly.
func NewMappingService(mappings repository.MappingRepository, cache MappingInvalidator, logger *zap.Logger) *MappingService {
	return &MappingService{mappings: mappings, cache: cache, logger: logger}
}

// Create adds one routing rule. The (category, division) pair must be unique;
// the division must name a known division.
func (s *MappingService) Create(ctx context.Context, category string, division string) (*domain.CategoryDivisionMapping, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.NewValidationError("nlp_category required", nil)
	}
	if !domain.IsValidDivision(division) {
		return nil, apperrors.NewInvalidDivision(division)
	}

	mapping := &domain.CategoryDivisionMapping{
		NLPCategory:    category,
		TargetDivision: domain.Division(division),
		Active:         true,
	}
	if err := s.mappings.Insert(ctx, mapping); err != nil {
		if errors.Is(err, repository.ErrDuplicateMapping) {
			return nil, apperrors.NewConflict("mapping already exists", map[string]any{
				"nlp_category":    category,
				"target_division": division,
			})
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidate(ctx, category)
	return mapping, nil
}

// SetActive toggles a rule without deleting it, preserving its history.
func (s *MappingService) SetActive(ctx context.Context, id int64, active bool) (*domain.CategoryDivisionMapping, error) {
	mapping, err := s.mappings.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("mapping", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidate(ctx, mapping.NLPCategory)
	return mapping, nil
}

// List returns every rule, active or not, ordered by category then division.
func (s *MappingService) List(ctx context.Context) ([]domain.CategoryDivisionMapping, error) {
	mappings, err := s.mappings.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return mappings, nil
}

func (s *MappingService) invalidate(ctx context.Context, category string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, category)
	s.logger.Debug("mapping cache invalidated", zap.String("category", category))
}
