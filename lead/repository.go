package lead

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals that the buyer does not exist.
var ErrNotFound = errors.New("lead: not found")

// Reader abstracts repository operations for the service.
type Reader interface {
	GetByID(ctx context.Context, id string) (Buyer, error)
}

// PGRepository implements Reader backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Buyer, error) {
	const query = `
		SELECT id, full_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(city, ''), created_at
		FROM leads
		WHERE id = $1
	`

	var b Buyer
	if err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.FullName, &b.Email, &b.Phone, &b.City, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Buyer{}, ErrNotFound
		}
		return Buyer{}, fmt.Errorf("lead: get by id: %w", err)
	}
	return b, nil
}
