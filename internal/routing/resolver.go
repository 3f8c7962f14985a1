// Package routing decides which divisions and which admin accounts see a
// ticket. The merge rules are pure functions over fetched inputs so the
// resolver is testable against in-memory sources.
package routing

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Target pairs a division with the reason it was included.
type Target struct {
	Division domain.Division
	Reason   domain.NotificationReason
}

// Recipient is one concrete admin account to notify.
type Recipient struct {
	Admin  domain.User
	Reason domain.NotificationReason
}

// MappingSource supplies active category routing rules in stored order.
type MappingSource interface {
	ListActiveDivisionsByCategory(ctx context.Context, category string) ([]domain.Division, error)
}

// Directory supplies admin accounts for recipient expansion.
type Directory interface {
	ListActiveAdminsByDivision(ctx context.Context, division domain.Division) ([]domain.User, error)
	ListActiveSuperAdmins(ctx context.Context) ([]domain.User, error)
}

// Resolver computes target divisions and recipients for a classified ticket.
type Resolver struct {
	mappings  MappingSource
	directory Directory
	fallback  domain.Division
	logger    *zap.Logger
}

// NewResolver constructs the resolver. fallback is the division used when a
// category has no active mapping rows.
func NewResolver(mappings MappingSource, directory Directory, fallback domain.Division, logger *zap.Logger) *Resolver {
	return &Resolver{
		mappings:  mappings,
		directory: directory,
		fallback:  fallback,
		logger:    logger,
	}
}

// ResolveTargets returns the ordered, deduplicated divisions that must see a
// ticket: the submitter's division first, then category-mapped divisions in
// stored order. A mapping lookup failure degrades to the fallback division so
// a ticket is never orphaned.
func (r *Resolver) ResolveTargets(ctx context.Context, submitterDivision domain.Division, category string) []Target {
	mapped, err := r.mappings.ListActiveDivisionsByCategory(ctx, category)
	if err != nil {
		r.logger.Warn("mapping lookup failed, using fallback division",
			zap.String("category", category), zap.Error(err))
		mapped = nil
	}
	return MergeTargets(submitterDivision, mapped, r.fallback)
}

// MergeTargets is the pure merge rule behind ResolveTargets. The submitter's
// division is always first with reason user_division; mapped divisions follow
// with reason nlp_category; duplicates collapse keeping the first reason.
func MergeTargets(submitterDivision domain.Division, mapped []domain.Division, fallback domain.Division) []Target {
	if len(mapped) == 0 {
		mapped = []domain.Division{fallback}
	}

	seen := make(map[domain.Division]struct{}, len(mapped)+1)
	targets := make([]Target, 0, len(mapped)+1)

	targets = append(targets, Target{Division: submitterDivision, Reason: domain.ReasonUserDivision})
	seen[submitterDivision] = struct{}{}

	for _, division := range mapped {
		if _, ok := seen[division]; ok {
			continue
		}
		seen[division] = struct{}{}
		targets = append(targets, Target{Division: division, Reason: domain.ReasonNLPCategory})
	}
	return targets
}

// ResolveRecipients expands target divisions into admin accounts, deduplicated
// by account identity with the first-seen reason kept, then appends every
// active super-admin tagged super_admin. Super-admins never carry a division
// reason because division expansion only selects accounts with the admin role.
// A division with no active admins contributes no recipients; that is not an
// error.
func (r *Resolver) ResolveRecipients(ctx context.Context, submitterDivision domain.Division, category string) ([]Recipient, error) {
	targets := r.ResolveTargets(ctx, submitterDivision, category)

	seen := make(map[string]struct{})
	recipients := make([]Recipient, 0)

	for _, target := range targets {
		admins, err := r.directory.ListActiveAdminsByDivision(ctx, target.Division)
		if err != nil {
			return nil, err
		}
		for _, admin := range admins {
			if _, ok := seen[admin.ID]; ok {
				continue
			}
			seen[admin.ID] = struct{}{}
			recipients = append(recipients, Recipient{Admin: admin, Reason: target.Reason})
		}
	}

	superAdmins, err := r.directory.ListActiveSuperAdmins(ctx)
	if err != nil {
		return nil, err
	}
	for _, admin := range superAdmins {
		if _, ok := seen[admin.ID]; ok {
			continue
		}
		seen[admin.ID] = struct{}{}
		recipients = append(recipients, Recipient{Admin: admin, Reason: domain.ReasonSuperAdmin})
	}

	return recipients, nil
}

// PrimaryTarget picks the canonical persisted target division: the first
// category-mapped division when one exists, otherwise the submitter's own.
func PrimaryTarget(targets []Target) domain.Division {
	for _, target := range targets {
		if target.Reason == domain.ReasonNLPCategory {
			return target.Division
		}
	}
	return targets[0].Division
}

// Divisions flattens targets to their division list, preserving order.
func Divisions(targets []Target) []domain.Division {
	out := make([]domain.Division, 0, len(targets))
	for _, target := range targets {
		out = append(out, target.Division)
	}
	return out
}
