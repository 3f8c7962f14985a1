// Package cache provides a read-mostly Redis cache over the category mapping
// table. Routing reads tolerate eventual consistency: a ticket routed moments
// before a mapping edit is not retroactively rerouted.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/routing"
)

const mappingKeyPrefix = "catmap:"

// MappingSource is a read-through cache implementing routing.MappingSource.
// Redis failures degrade to direct table reads.
type MappingSource struct {
	client *redis.Client
	inner  routing.MappingSource
	ttl    time.Duration
	logger *zap.Logger
}

// NewMappingSource wraps inner with a Redis cache.
func NewMappingSource(client *redis.Client, inner routing.MappingSource, ttl time.Duration, logger *zap.Logger) *MappingSource {
	return &MappingSource{
		client: client,
		inner:  inner,
		ttl:    ttl,
		logger: logger,
	}
}

// ListActiveDivisionsByCategory serves cached routes when present, otherwise
// reads through and populates the cache.
func (s *MappingSource) ListActiveDivisionsByCategory(ctx context.Context, category string) ([]domain.Division, error) {
	key := mappingKeyPrefix + category

	if s.client != nil {
		cached, err := s.client.Get(ctx, key).Bytes()
		if err == nil {
			var divisions []domain.Division
			if jsonErr := json.Unmarshal(cached, &divisions); jsonErr == nil {
				return divisions, nil
			}
			s.logger.Warn("corrupt mapping cache entry", zap.String("key", key))
		} else if err != redis.Nil {
			s.logger.Warn("mapping cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	divisions, err := s.inner.ListActiveDivisionsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if s.client != nil {
		if payload, jsonErr := json.Marshal(divisions); jsonErr == nil {
			if setErr := s.client.Set(ctx, key, payload, s.ttl).Err(); setErr != nil {
				s.logger.Warn("mapping cache write failed", zap.String("key", key), zap.Error(setErr))
			}
		}
	}
	return divisions, nil
}

// Invalidate drops the cached routes for a category after a mapping write.
func (s *MappingSource) Invalidate(ctx context.Context, category string) {
	if s.client == nil {
		return
	}
	if err := s.client.Del(ctx, mappingKeyPrefix+category).Err(); err != nil {
		s.logger.Warn("mapping cache invalidation failed",
			zap.String("category", category), zap.Error(err))
	}
}
