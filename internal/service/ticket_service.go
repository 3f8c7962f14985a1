package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/nlp"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/routing"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService runs the submission pipeline: classify, route, persist,
// dispatch. Ticket durability never depends on the classifier or on
// notification delivery.
type TicketService struct {
	tickets       repository.TicketRepository
	users         repository.UserRepository
	classifier    nlp.Classifier
	resolver      *routing.Resolver
	notifications *NotificationService
	dispatcher    events.Dispatcher
	logger        *zap.Logger

	defaultCategory string
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	UserRepo        repository.UserRepository
	Classifier      nlp.Classifier
	Resolver        *routing.Resolver
	Notifications   *NotificationService
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	DefaultCategory string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	ImageURL    *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:         deps.TicketRepo,
		users:           deps.UserRepo,
		classifier:      deps.Classifier,
		resolver:        deps.Resolver,
		notifications:   deps.Notifications,
		dispatcher:      deps.Dispatcher,
		logger:          deps.Logger,
		defaultCategory: deps.DefaultCategory,
	}
}

// CreateTicket persists a new ticket and notifies the resolved recipients.
// Classification failure falls back to the default category with zero
// confidence; recipient or dispatch failures are logged, never surfaced.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, DispatchResult, error) {
	submitter, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, DispatchResult{}, apperrors.MapError(err)
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)

	category := s.defaultCategory
	confidence := 0.0
	var keywords []string
	if result, classifyErr := s.classifier.Classify(ctx, title+" "+description); classifyErr != nil {
		s.logger.Warn("classification unavailable, using default category",
			zap.String("category", category), zap.Error(classifyErr))
	} else {
		if result.Category != "" {
			category = result.Category
		}
		confidence = result.Confidence
		keywords = result.Keywords
	}

	targets := s.resolver.ResolveTargets(ctx, submitter.Division, category)

	ticket := &domain.Ticket{
		ExternalKey:     generateTicketKey(),
		RequesterID:     submitter.ID,
		Title:           title,
		Description:     description,
		ImageURL:        input.ImageURL,
		Status:          domain.TicketStatusNew,
		UserDivision:    submitter.Division,
		Category:        category,
		NLPConfidence:   confidence,
		NLPKeywords:     keywords,
		TargetDivision:  routing.PrimaryTarget(targets),
		TargetDivisions: routing.Divisions(targets),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, DispatchResult{}, apperrors.MapError(err)
	}

	var dispatched DispatchResult
	recipients, err := s.resolver.ResolveRecipients(ctx, submitter.Division, category)
	if err != nil {
		s.logger.Error("recipient resolution failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	} else {
		dispatched = s.notifications.Dispatch(ctx, ticket, submitter, recipients)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: submitter.ID, Role: submitter.Role},
		Payload: events.TicketCreatedPayload{
			UserDivision:    ticket.UserDivision,
			Category:        ticket.Category,
			TargetDivisions: ticket.TargetDivisions,
			Confidence:      ticket.NLPConfidence,
			Title:           ticket.Title,
		},
	})
	return ticket, dispatched, nil
}

// GetTicket fetches a ticket enforcing role-based visibility.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !callerCanSeeTicket(caller, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListTickets returns tickets visible to the caller: own tickets for users,
// division-scoped for admins, everything for super-admins.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, limit, offset int) ([]domain.Ticket, error) {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return s.tickets.ListAll(ctx, limit, offset)
	case domain.RoleAdmin:
		return s.tickets.ListByDivision(ctx, caller.Division, limit, offset)
	default:
		return s.tickets.ListByRequester(ctx, caller.ID, limit, offset)
	}
}

// UpdateStatus moves a ticket through its lifecycle; admin-only.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.User, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.IsValidStatusTransition(ticket.Status, next) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"current": ticket.Status,
			"next":    next,
		})
	}
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, next); err != nil {
		return nil, apperrors.MapError(err)
	}
	oldStatus := ticket.Status
	ticket.Status = next

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: caller.ID, Role: caller.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
		},
	})
	return ticket, nil
}

// DivisionStats returns ticket counts by status for the caller's scope.
func (s *TicketService) DivisionStats(ctx context.Context, caller *domain.User) (map[domain.TicketStatus]int, error) {
	if caller.Role == domain.RoleSuperAdmin {
		return s.tickets.CountByStatus(ctx, nil)
	}
	division := caller.Division
	return s.tickets.CountByStatus(ctx, &division)
}

func callerCanSeeTicket(caller *domain.User, ticket *domain.Ticket) bool {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleAdmin:
		if ticket.UserDivision == caller.Division {
			return true
		}
		for _, division := range ticket.TargetDivisions {
			if division == caller.Division {
				return true
			}
		}
		return ticket.TargetDivision == caller.Division
	default:
		return ticket.RequesterID == caller.ID
	}
}

func generateTicketKey() string {
	return "HDT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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
