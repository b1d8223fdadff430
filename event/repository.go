package event

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles data access for behavioral signal events.
type Repository interface {
	Insert(ctx context.Context, sig Signal) (Signal, error)
	ListRecent(ctx context.Context, buyerID, propertyID string, since time.Time) ([]Signal, error)
	ListLatestForBuyer(ctx context.Context, buyerID string, limit int) ([]Signal, error)
	ListForBuyerSince(ctx context.Context, buyerID string, since time.Time) ([]Signal, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const signalColumns = `id, buyer_id, COALESCE(property_id::text, ''), session_id, event_type, event_metadata, COALESCE(time_of_day, ''), occurred_at`

func (r *PGRepository) Insert(ctx context.Context, sig Signal) (Signal, error) {
	const query = `
		INSERT INTO behavioral_signal_events (id, buyer_id, property_id, session_id, event_type, event_metadata, time_of_day, occurred_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, NULLIF($3, '')::uuid, $4, $5, $6, NULLIF($7, ''), $8)
		RETURNING ` + signalColumns

	row := r.pool.QueryRow(ctx, query,
		sig.ID,
		sig.BuyerID,
		sig.PropertyID,
		sig.SessionID,
		sig.Type,
		sig.Metadata,
		sig.TimeOfDay,
		sig.OccurredAt,
	)

	created, err := scanSignal(row)
	if err != nil {
		return Signal{}, fmt.Errorf("event: insert signal: %w", err)
	}
	return created, nil
}

func (r *PGRepository) ListRecent(ctx context.Context, buyerID, propertyID string, since time.Time) ([]Signal, error) {
	const query = `
		SELECT ` + signalColumns + `
		FROM behavioral_signal_events
		WHERE buyer_id = $1 AND property_id = $2 AND occurred_at >= $3
		ORDER BY occurred_at ASC
	`

	rows, err := r.pool.Query(ctx, query, buyerID, propertyID, since)
	if err != nil {
		return nil, fmt.Errorf("event: list recent: %w", err)
	}
	defer rows.Close()

	return collectSignals(rows)
}

func (r *PGRepository) ListLatestForBuyer(ctx context.Context, buyerID string, limit int) ([]Signal, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT ` + signalColumns + `
		FROM behavioral_signal_events
		WHERE buyer_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, buyerID, limit)
	if err != nil {
		return nil, fmt.Errorf("event: list latest for buyer: %w", err)
	}
	defer rows.Close()

	return collectSignals(rows)
}

// ListForBuyerSince returns every event the buyer produced in the window,
// across all properties, without a row cap.
func (r *PGRepository) ListForBuyerSince(ctx context.Context, buyerID string, since time.Time) ([]Signal, error) {
	const query = `
		SELECT ` + signalColumns + `
		FROM behavioral_signal_events
		WHERE buyer_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC
	`

	rows, err := r.pool.Query(ctx, query, buyerID, since)
	if err != nil {
		return nil, fmt.Errorf("event: list for buyer since: %w", err)
	}
	defer rows.Close()

	return collectSignals(rows)
}

func collectSignals(rows pgx.Rows) ([]Signal, error) {
	out := make([]Signal, 0, 16)
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("event: scan signal: %w", err)
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event: iterate signals: %w", err)
	}
	return out, nil
}

func scanSignal(row pgx.Row) (Signal, error) {
	var sig Signal
	return sig, row.Scan(
		&sig.ID,
		&sig.BuyerID,
		&sig.PropertyID,
		&sig.SessionID,
		&sig.Type,
		&sig.Metadata,
		&sig.TimeOfDay,
		&sig.OccurredAt,
	)
}
