package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/routing"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// DispatchResult summarizes a notification dispatch so callers can observe
// partial failure instead of it disappearing into logs.
type DispatchResult struct {
	Created int
	Skipped int
	Failed  []string
}

// NotificationService persists per-recipient notifications and exposes the
// recipient-facing read/ack operations. Persistence is the durability
// boundary; out-of-band delivery rides on the event dispatcher.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		metrics:       metrics,
		logger:        logger,
	}
}

// Dispatch creates one notification row per recipient. A persistence failure
// for one recipient never aborts the rest; an existing (recipient, ticket)
// row is skipped, keeping the first-resolved reason.
func (s *NotificationService) Dispatch(ctx context.Context, ticket *domain.Ticket, submitter *domain.User, recipients []routing.Recipient) DispatchResult {
	var result DispatchResult

	for _, recipient := range recipients {
		notification := &domain.Notification{
			RecipientID: recipient.Admin.ID,
			TicketID:    ticket.ID,
			SubmitterID: submitter.ID,
			Title:       ticket.Title,
			Message:     notificationMessage(ticket, submitter, recipient.Reason),
			Reason:      recipient.Reason,
		}

		err := s.notifications.Create(ctx, notification)
		switch {
		case err == nil:
			result.Created++
			s.metrics.RecordDispatch(string(recipient.Reason), true)
			s.publishCreated(ctx, ticket, recipient, notification)
		case errors.Is(err, repository.ErrDuplicateNotification):
			result.Skipped++
		default:
			result.Failed = append(result.Failed, recipient.Admin.ID)
			s.metrics.RecordDispatch(string(recipient.Reason), false)
			s.logger.Error("notification persist failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("recipient_id", recipient.Admin.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("notifications dispatched",
		zap.String("ticket_id", ticket.ID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)))
	return result
}

// ListForRecipient returns the recipient's notifications most-recent-first
// along with their unread count.
func (s *NotificationService) ListForRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, int, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// MarkRead marks one notification read; repeating the call is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, recipientID, notificationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification for the recipient.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, recipientID)
}

func (s *NotificationService) publishCreated(ctx context.Context, ticket *domain.Ticket, recipient routing.Recipient, notification *domain.Notification) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventNotificationCreated,
		TicketID:  ticket.ID,
		Timestamp: time.Now(),
		Payload: events.NotificationCreatedPayload{
			NotificationID: notification.ID,
			RecipientID:    recipient.Admin.ID,
			RecipientEmail: recipient.Admin.ContactEmail(),
			Reason:         recipient.Reason,
			Title:          notification.Title,
			Message:        notification.Message,
		},
	})
}

func notificationMessage(ticket *domain.Ticket, submitter *domain.User, reason domain.NotificationReason) string {
	message := fmt.Sprintf("New ticket from %s (%s)", submitter.Name, ticket.UserDivision)
	if reason == domain.ReasonNLPCategory {
		message += fmt.Sprintf(" - Category: %s", ticket.Category)
	}
	return message
}
