package readiness

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TriggerLog records matched signals. Append-only; no uniqueness constraint
// is enforced, matching the at-least-once audit-trail semantics.
type TriggerLog interface {
	Insert(ctx context.Context, trigger Trigger) error
}

// PGTriggerLog implements TriggerLog backed by PostgreSQL.
type PGTriggerLog struct {
	pool *pgxpool.Pool
}

func NewTriggerLog(pool *pgxpool.Pool) *PGTriggerLog {
	return &PGTriggerLog{pool: pool}
}

func (l *PGTriggerLog) Insert(ctx context.Context, trigger Trigger) error {
	const query = `
		INSERT INTO readiness_signal_triggers (buyer_id, property_id, signal_name, signal_weight, session_id, evaluation_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := l.pool.Exec(ctx, query,
		trigger.BuyerID,
		trigger.PropertyID,
		trigger.SignalName,
		trigger.SignalWeight,
		trigger.SessionID,
		trigger.EvaluationID,
	); err != nil {
		return fmt.Errorf("readiness: insert trigger: %w", err)
	}
	return nil
}
