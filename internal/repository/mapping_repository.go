package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrDuplicateMapping reports an insert for an existing (category, division) pair.
var ErrDuplicateMapping = errors.New("mapping already exists for category and division")

const uniqueViolationCode = "23505"

// MappingRepository manages category to division routing rules.
type MappingRepository interface {
	Insert(ctx context.Context, mapping *domain.CategoryDivisionMapping) error
	SetActive(ctx context.Context, id int64, active bool) (*domain.CategoryDivisionMapping, error)
	List(ctx context.Context) ([]domain.CategoryDivisionMapping, error)
	ListActiveDivisionsByCategory(ctx context.Context, category string) ([]domain.Division, error)
}

type mappingRepository struct {
	pool *pgxpool.Pool
}

// NewMappingRepository builds the repository.
func NewMappingRepository(pool *pgxpool.Pool) MappingRepository {
	return &mappingRepository{pool: pool}
}

func (r *mappingRepository) Insert(ctx context.Context, mapping *domain.CategoryDivisionMapping) error {
	const query = `
        INSERT INTO category_division_mapping (nlp_category, target_division, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		mapping.NLPCategory,
		mapping.TargetDivision,
		mapping.Active,
	).Scan(&mapping.ID, &mapping.CreatedAt, &mapping.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateMapping
		}
		return err
	}
	return nil
}

func (r *mappingRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.CategoryDivisionMapping, error) {
	const query = `
        UPDATE category_division_mapping SET is_active=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING id, nlp_category, target_division, is_active, created_at, updated_at`
	var mapping domain.CategoryDivisionMapping
	if err := r.pool.QueryRow(ctx, query, active, id).Scan(
		&mapping.ID,
		&mapping.NLPCategory,
		&mapping.TargetDivision,
		&mapping.Active,
		&mapping.CreatedAt,
		&mapping.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *mappingRepository) List(ctx context.Context) ([]domain.CategoryDivisionMapping, error) {
	const query = `
        SELECT id, nlp_category, target_division, is_active, created_at, updated_at
        FROM category_division_mapping
        ORDER BY nlp_category, target_division`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMappings(rows)
}

// ListActiveDivisionsByCategory returns divisions in stored (insertion) order.
func (r *mappingRepository) ListActiveDivisionsByCategory(ctx context.Context, category string) ([]domain.Division, error) {
	const query = `
        SELECT target_division
        FROM category_division_mapping
        WHERE nlp_category=$1 AND is_active=TRUE
        ORDER BY id`
	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Division
	for rows.Next() {
		var division domain.Division
		if err := rows.Scan(&division); err != nil {
			return nil, err
		}
		result = append(result, division)
	}
	return result, rows.Err()
}

func scanMappings(rows pgx.Rows) ([]domain.CategoryDivisionMapping, error) {
	var result []domain.CategoryDivisionMapping
	for rows.Next() {
		var mapping domain.CategoryDivisionMapping
		if err := rows.Scan(
			&mapping.ID,
			&mapping.NLPCategory,
			&mapping.TargetDivision,
			&mapping.Active,
			&mapping.CreatedAt,
			&mapping.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, mapping)
	}
	return result, rows.Err()
}
