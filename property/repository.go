package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals that the property does not exist.
var ErrNotFound = errors.New("property: not found")

// Reader abstracts repository operations for the service.
type Reader interface {
	GetByID(ctx context.Context, id string) (Listing, error)
}

// PGRepository implements Reader backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Listing, error) {
	const query = `
		SELECT id, builder_id, title, COALESCE(city, ''), price_inr, area_sqft, units_remaining, created_at
		FROM properties
		WHERE id = $1
	`

	var l Listing
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.BuilderID,
		&l.Title,
		&l.City,
		&l.PriceINR,
		&l.AreaSqft,
		&l.UnitsRemaining,
		&l.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("property: get by id: %w", err)
	}
	return l, nil
}
