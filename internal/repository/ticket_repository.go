package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ticketColumns = `id, external_key, requester_user_id, title, description, image_url, status,
               user_division, nlp_category, nlp_confidence, nlp_keywords,
               target_division, target_divisions,
               is_nlp_overridden, original_nlp_division, override_reason, overridden_by, overridden_at,
               created_at, updated_at`

// TicketRepository encapsulates ticket persistence. Tickets are never hard
// deleted: the override audit trail must stay queryable.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	ApplyOverride(ctx context.Context, id string, newDivision domain.Division, reason *string, actorID string) (*domain.Ticket, error)
	ListByRequester(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error)
	ListByDivision(ctx context.Context, division domain.Division, limit, offset int) ([]domain.Ticket, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context, division *domain.Division) (map[domain.TicketStatus]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, requester_user_id, title, description, image_url, status,
                             user_division, nlp_category, nlp_confidence, nlp_keywords,
                             target_division, target_divisions)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,COALESCE($10,'{}'),$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.RequesterID,
		ticket.Title,
		ticket.Description,
		ticket.ImageURL,
		ticket.Status,
		ticket.UserDivision,
		ticket.Category,
		ticket.NLPConfidence,
		ticket.NLPKeywords,
		ticket.TargetDivision,
		divisionsToText(ticket.TargetDivisions),
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ApplyOverride performs the override write in one statement. The COALESCE on
// original_nlp_division is the compare-and-set: it captures the pre-override
// target exactly once, and concurrent overrides cannot clobber it because all
// SET expressions read the old row.
func (r *ticketRepository) ApplyOverride(ctx context.Context, id string, newDivision domain.Division, reason *string, actorID string) (*domain.Ticket, error) {
	query := `
        UPDATE tickets
        SET original_nlp_division = COALESCE(original_nlp_division, target_division),
            target_division = $2,
            is_nlp_overridden = TRUE,
            override_reason = $3,
            overridden_by = $4,
            overridden_at = NOW(),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + ticketColumns
	row := r.pool.QueryRow(ctx, query, id, newDivision, reason, actorID)
	return scanTicket(row)
}

func (r *ticketRepository) ListByRequester(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets WHERE requester_user_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListByDivision returns tickets visible to a division admin: tickets raised
// by users in the division plus tickets routed to it by category mapping.
func (r *ticketRepository) ListByDivision(ctx context.Context, division domain.Division, limit, offset int) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE user_division=$1 OR $1 = ANY(target_divisions)
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, division, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, division *domain.Division) (map[domain.TicketStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM tickets`
	args := []any{}
	if division != nil {
		query += ` WHERE user_division=$1 OR $1 = ANY(target_divisions)`
		args = append(args, *division)
	}
	query += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int)
	for rows.Next() {
		var status domain.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var targets []string
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.RequesterID,
		&ticket.Title,
		&ticket.Description,
		&ticket.ImageURL,
		&ticket.Status,
		&ticket.UserDivision,
		&ticket.Category,
		&ticket.NLPConfidence,
		&ticket.NLPKeywords,
		&ticket.TargetDivision,
		&targets,
		&ticket.IsNLPOverridden,
		&ticket.OriginalNLPDivision,
		&ticket.OverrideReason,
		&ticket.OverriddenBy,
		&ticket.OverriddenAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.TargetDivisions = textToDivisions(targets)
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func divisionsToText(divisions []domain.Division) []string {
	out := make([]string, 0, len(divisions))
	for _, d := range divisions {
		out = append(out, string(d))
	}
	return out
}

func textToDivisions(values []string) []domain.Division {
	out := make([]domain.Division, 0, len(values))
	for _, v := range values {
		out = append(out, domain.Division(v))
	}
	return out
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
