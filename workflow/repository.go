package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles data access for dispatch records.
type Repository interface {
	Insert(ctx context.Context, rec DispatchRecord) (DispatchRecord, error)
	ListRetryCandidates(ctx context.Context, now time.Time, limit int) ([]DispatchRecord, error)
	MarkSent(ctx context.Context, id, providerMessageID string) error
	MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error
	MarkPermanentFailure(ctx context.Context, id string) error
	ScheduleRetry(ctx context.Context, id string, retryAfter time.Time) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const dispatchColumns = `id, buyer_id, property_id, action_type, urgency, whatsapp_body, email_body, sms_body, status, attempts, failure_reason, failed_at, retry_after, provider_message_id, created_at, updated_at`

func (r *PGRepository) Insert(ctx context.Context, rec DispatchRecord) (DispatchRecord, error) {
	const query = `
		INSERT INTO workflow_dispatches (id, buyer_id, property_id, action_type, urgency, whatsapp_body, email_body, sms_body, status)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + dispatchColumns

	row := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.BuyerID,
		rec.PropertyID,
		rec.ActionType,
		rec.Urgency,
		rec.Message.WhatsApp,
		rec.Message.Email,
		rec.Message.SMS,
		rec.Status,
	)

	created, err := scanDispatch(row)
	if err != nil {
		return DispatchRecord{}, fmt.Errorf("workflow: insert dispatch: %w", err)
	}
	return created, nil
}

// ListRetryCandidates returns failed dispatches whose fixed backoff window
// has elapsed for their attempt count: 5m after the first failure, 15m after
// the second, 60m after the third.
func (r *PGRepository) ListRetryCandidates(ctx context.Context, now time.Time, limit int) ([]DispatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT ` + dispatchColumns + `
		FROM workflow_dispatches
		WHERE status = 'failed'
		  AND attempts < 3
		  AND failed_at IS NOT NULL
		  AND (retry_after IS NULL OR retry_after <= $1)
		  AND (
		        (attempts = 0 AND failed_at <= $1 - interval '5 minutes')
		     OR (attempts = 1 AND failed_at <= $1 - interval '15 minutes')
		     OR (attempts = 2 AND failed_at <= $1 - interval '60 minutes')
		  )
		ORDER BY attempts ASC, failed_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("workflow: list retry candidates: %w", err)
	}
	defer rows.Close()

	out := make([]DispatchRecord, 0, limit)
	for rows.Next() {
		rec, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("workflow: scan retry candidate: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: iterate retry candidates: %w", err)
	}
	return out, nil
}

func (r *PGRepository) MarkSent(ctx context.Context, id, providerMessageID string) error {
	const query = `
		UPDATE workflow_dispatches
		SET status = 'sent', attempts = attempts + 1, provider_message_id = $2, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, query, id, providerMessageID); err != nil {
		return fmt.Errorf("workflow: mark sent: %w", err)
	}
	return nil
}

func (r *PGRepository) MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error {
	const query = `
		UPDATE workflow_dispatches
		SET status = 'failed', attempts = attempts + 1, failure_reason = $2, failed_at = $3, retry_after = NULL, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, query, id, reason, failedAt); err != nil {
		return fmt.Errorf("workflow: mark failed: %w", err)
	}
	return nil
}

func (r *PGRepository) MarkPermanentFailure(ctx context.Context, id string) error {
	const query = `
		UPDATE workflow_dispatches
		SET status = 'permanent_failure', updated_at = now()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("workflow: mark permanent failure: %w", err)
	}
	return nil
}

func (r *PGRepository) ScheduleRetry(ctx context.Context, id string, retryAfter time.Time) error {
	const query = `
		UPDATE workflow_dispatches
		SET retry_after = $2, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, query, id, retryAfter); err != nil {
		return fmt.Errorf("workflow: schedule retry: %w", err)
	}
	return nil
}

func scanDispatch(row pgx.Row) (DispatchRecord, error) {
	var rec DispatchRecord
	return rec, row.Scan(
		&rec.ID,
		&rec.BuyerID,
		&rec.PropertyID,
		&rec.ActionType,
		&rec.Urgency,
		&rec.Message.WhatsApp,
		&rec.Message.Email,
		&rec.Message.SMS,
		&rec.Status,
		&rec.Attempts,
		&rec.FailureReason,
		&rec.FailedAt,
		&rec.RetryAfter,
		&rec.ProviderMessageID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
}
