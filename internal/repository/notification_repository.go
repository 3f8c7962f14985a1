package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrDuplicateNotification reports that the recipient already holds a
// notification for the ticket. The unique index on (recipient, ticket) is the
// storage-level enforcement of the at-most-one invariant.
var ErrDuplicateNotification = errors.New("notification already exists for recipient and ticket")

// NotificationRepository persists per-recipient ticket notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_user_id, ticket_id, submitter_user_id, title, message, notification_reason, is_read)
        VALUES ($1,$2,$3,$4,$5,$6,FALSE)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		notification.RecipientID,
		notification.TicketID,
		notification.SubmitterID,
		notification.Title,
		notification.Message,
		notification.Reason,
	).Scan(&notification.ID, &notification.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateNotification
		}
		return err
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	const query = `
        SELECT id, recipient_user_id, ticket_id, submitter_user_id, title, message, notification_reason, is_read, created_at
        FROM notifications
        WHERE recipient_user_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, recipientID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_user_id=$1 AND is_read=FALSE`
	var count int
	if err := r.pool.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead is idempotent: marking an already-read notification succeeds.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND recipient_user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, notificationID, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	const query = `UPDATE notifications SET is_read=TRUE WHERE recipient_user_id=$1 AND is_read=FALSE`
	cmd, err := r.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanNotifications(rows pgx.Rows) ([]domain.Notification, error) {
	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.TicketID,
			&n.SubmitterID,
			&n.Title,
			&n.Message,
			&n.Reason,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
