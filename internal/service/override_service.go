package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/routing"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// OverrideService handles manual reclassification of tickets. The first
// override captures the automatic routing result in original_nlp_division;
// later overrides update the latest-override metadata only.
type OverrideService struct {
	tickets       repository.TicketRepository
	users         repository.UserRepository
	notifications *NotificationService
	dispatcher    events.Dispatcher
	logger        *zap.Logger

	// notifyOnOverride extends the original behavior: when set, admins of the
	// overridden-to division are notified for tickets they have not seen.
	notifyOnOverride bool
	directory        routing.Directory
}

// OverrideDependencies bundles collaborators for the override service.
type OverrideDependencies struct {
	TicketRepo       repository.TicketRepository
	UserRepo         repository.UserRepository
	Notifications    *NotificationService
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	NotifyOnOverride bool
	Directory        routing.Directory
}

// NewOverrideService constructs the service.
func NewOverrideService(deps OverrideDependencies) *OverrideService {
	return &OverrideService{
		tickets:          deps.TicketRepo,
		users:            deps.UserRepo,
		notifications:    deps.Notifications,
		dispatcher:       deps.Dispatcher,
		logger:           deps.Logger,
		notifyOnOverride: deps.NotifyOnOverride,
		directory:        deps.Directory,
	}
}

// Override reroutes a ticket to a new division with an audit trail. The new
// division must name a known division; unknown values are rejected. Existing
// notifications stay untouched as historical record.
func (s *OverrideService) Override(ctx context.Context, actor *domain.User, ticketID, newDivision string, reason *string) (*domain.Ticket, error) {
	if !domain.IsValidDivision(newDivision) {
		return nil, apperrors.NewInvalidDivision(newDivision)
	}

	before, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.ApplyOverride(ctx, ticketID, domain.Division(newDivision), reason, actor.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketOverridden,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload: events.TicketOverriddenPayload{
			OldDivision:   before.TargetDivision,
			NewDivision:   ticket.TargetDivision,
			Reason:        reason,
			FirstOverride: !before.IsNLPOverridden,
		},
	})

	if s.notifyOnOverride {
		s.notifyNewDivision(ctx, ticket)
	}
	return ticket, nil
}

// notifyNewDivision dispatches to admins of the overridden-to division. The
// per-(recipient, ticket) uniqueness constraint makes this idempotent: admins
// already notified at creation time are skipped.
func (s *OverrideService) notifyNewDivision(ctx context.Context, ticket *domain.Ticket) {
	submitter, err := s.users.GetByID(ctx, ticket.RequesterID)
	if err != nil {
		s.logger.Error("submitter lookup failed for override dispatch",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	admins, err := s.directory.ListActiveAdminsByDivision(ctx, ticket.TargetDivision)
	if err != nil {
		s.logger.Error("admin lookup failed for override dispatch",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}

	recipients := make([]routing.Recipient, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, routing.Recipient{Admin: admin, Reason: domain.ReasonNLPCategory})
	}
	s.notifications.Dispatch(ctx, ticket, submitter, recipients)
}

func (s *OverrideService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
