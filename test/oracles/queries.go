package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_trigger_weight_positive",
			SQL:  `SELECT id FROM readiness_signal_triggers WHERE signal_weight <= 0`,
		},
		{
			Name: "O2_evaluation_signals_distinct",
			SQL: `SELECT evaluation_id, signal_name, COUNT(*) FROM readiness_signal_triggers
                  GROUP BY evaluation_id, signal_name HAVING COUNT(*) > 1`,
		},
		{
			Name: "O3_evaluation_single_session",
			SQL: `SELECT evaluation_id FROM readiness_signal_triggers
                  GROUP BY evaluation_id HAVING COUNT(DISTINCT session_id) > 1`,
		},
		{
			Name: "O4_whatsapp_requires_critical",
			SQL: `SELECT id FROM workflow_dispatches
                  WHERE action_type = 'send_whatsapp' AND urgency <> 'CRITICAL'`,
		},
		{
			Name: "O5_sms_length_cap",
			SQL:  `SELECT id FROM workflow_dispatches WHERE length(sms_body) > 160`,
		},
		{
			Name: "O6_dispatch_attempts_bounded",
			SQL:  `SELECT id FROM workflow_dispatches WHERE attempts > 3 OR attempts < 0`,
		},
		{
			Name: "O7_failure_state_consistent",
			SQL: `SELECT id FROM workflow_dispatches
                  WHERE status IN ('failed', 'permanent_failure') AND failure_reason IS NULL`,
		},
		{
			Name: "O8_sent_has_provider_id",
			SQL: `SELECT id FROM workflow_dispatches
                  WHERE status = 'sent' AND provider_message_id IS NULL`,
		},
		{
			Name: "O9_profile_confidence_range",
			SQL: `SELECT buyer_id FROM buyer_persona_profiles
                  WHERE confidence < 0 OR confidence > 100
                     OR primary_type NOT IN ('scarcity_driven', 'roi_driven', 'lifestyle_driven')`,
		},
		{
			Name: "O10_time_of_day_format",
			SQL: `SELECT id FROM behavioral_signal_events
                  WHERE time_of_day IS NOT NULL
                    AND time_of_day !~ '^([01][0-9]|2[0-3]):[0-5][0-9]$'`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
