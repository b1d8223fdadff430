package actors

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var eventTypes = []string{
	"page_view", "property_view", "image_view", "document_download",
	"emi_calculation", "roi_analysis", "search", "amenity_check",
	"testimonial_view", "video_view", "contact_builder_click",
}

var signalNames = []string{
	"time_spent_3min_plus", "visited_pricing_calculator", "viewed_3plus_images",
	"downloaded_spec_sheet", "viewed_testimonials", "searched_nearby_amenities",
	"searched_schools_hospitals", "checked_traffic_commute",
	"visited_community_page_2plus", "accessed_contact_booking",
}

var personaTypes = []string{"scarcity_driven", "roi_driven", "lifestyle_driven"}

// Tracker streams behavioral events for one buyer/property pair the way the
// front-end instrumentation would.
func Tracker(ctx context.Context, pool *pgxpool.Pool, buyerID, propertyID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		ty := eventTypes[rand.Intn(len(eventTypes))]
		tod := fmt.Sprintf("%02d:%02d", rand.Intn(24), rand.Intn(60))
		_, err := pool.Exec(ctx, `INSERT INTO behavioral_signal_events
                (buyer_id, property_id, session_id, event_type, event_metadata, time_of_day)
                VALUES ($1, $2, gen_random_uuid(), $3, $4, $5)`,
			buyerID, propertyID, ty,
			fmt.Sprintf(`{"time_spent_seconds": %d}`, rand.Intn(400)), tod)
		if err != nil {
			return fmt.Errorf("tracker insert: %w", err)
		}
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Evaluator simulates scoring runs: each iteration writes one batch of
// trigger rows sharing a fresh evaluation id, with distinct signal names
// inside the batch.
func Evaluator(ctx context.Context, pool *pgxpool.Pool, buyerID, propertyID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		n := 1 + rand.Intn(len(signalNames))
		picks := rand.Perm(len(signalNames))[:n]

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		var evalID, sessionID string
		if err := tx.QueryRow(ctx, `SELECT gen_random_uuid()::text, gen_random_uuid()::text`).Scan(&evalID, &sessionID); err != nil {
			_ = tx.Rollback(ctx)
			continue
		}
		ok := true
		for _, p := range picks {
			if _, err := tx.Exec(ctx, `INSERT INTO readiness_signal_triggers
                        (buyer_id, property_id, signal_name, signal_weight, session_id, evaluation_id)
                        VALUES ($1, $2, $3, 1, $4, $5)`,
				buyerID, propertyID, signalNames[p], sessionID, evalID); err != nil {
				ok = false
				break
			}
		}
		if ok {
			_ = tx.Commit(ctx)
		} else {
			_ = tx.Rollback(ctx)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// Dispatcher writes workflow records the way the dispatch service does:
// whatsapp only at CRITICAL urgency, sms capped at 160 chars, a slice of
// rows seeded directly into the failed state to feed the retry worker.
func Dispatcher(ctx context.Context, pool *pgxpool.Pool, buyerID, propertyID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		urgency := []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}[rand.Intn(4)]
		action := "send_email"
		if urgency == "CRITICAL" {
			action = "send_whatsapp"
		}
		sms := fmt.Sprintf("New launch alert for your shortlisted project (%d)", rand.Int31())

		if rand.Intn(4) == 0 {
			// pre-failed row for the retry worker to pick up
			_, err := pool.Exec(ctx, `INSERT INTO workflow_dispatches
                        (buyer_id, property_id, action_type, urgency, sms_body, status, attempts, failure_reason, failed_at, retry_after)
                        VALUES ($1, $2, $3, $4, $5, 'failed', $6, 'provider timeout', NOW(), NOW())`,
				buyerID, propertyID, action, urgency, sms, rand.Intn(3))
			if err != nil {
				return fmt.Errorf("dispatcher insert failed row: %w", err)
			}
		} else {
			_, err := pool.Exec(ctx, `INSERT INTO workflow_dispatches
                        (buyer_id, property_id, action_type, urgency, sms_body, status)
                        VALUES ($1, $2, $3, $4, $5, 'pending')`,
				buyerID, propertyID, action, urgency, sms)
			if err != nil {
				return fmt.Errorf("dispatcher insert: %w", err)
			}
		}
		time.Sleep(time.Duration(15+rand.Intn(35)) * time.Millisecond)
	}
}

// RetryWorker drains failed dispatches with SKIP LOCKED and settles each one
// as sent, failed again, or permanently failed.
func RetryWorker(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		rows, err := tx.Query(ctx, `SELECT id, attempts FROM workflow_dispatches
                        WHERE status = 'failed' AND attempts < 3 AND retry_after <= NOW()
                        ORDER BY attempts, failed_at
                        FOR UPDATE SKIP LOCKED LIMIT 10`)
		if err != nil {
			_ = tx.Rollback(ctx)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		type row struct {
			id       string
			attempts int
		}
		batch := make([]row, 0, 10)
		for rows.Next() {
			var r row
			_ = rows.Scan(&r.id, &r.attempts)
			batch = append(batch, r)
		}
		rows.Close()

		for _, r := range batch {
			switch {
			case rand.Intn(10) == 0:
				_, _ = tx.Exec(ctx, `UPDATE workflow_dispatches
                                        SET status='permanent_failure', failure_reason='recipient address rejected', updated_at=NOW()
                                        WHERE id=$1`, r.id)
			case rand.Intn(5) == 0 && r.attempts < 2:
				_, _ = tx.Exec(ctx, `UPDATE workflow_dispatches
                                        SET attempts=attempts+1, failure_reason='provider timeout', failed_at=NOW(), retry_after=NOW(), updated_at=NOW()
                                        WHERE id=$1`, r.id)
			default:
				_, _ = tx.Exec(ctx, `UPDATE workflow_dispatches
                                        SET status='sent', provider_message_id=gen_random_uuid()::text, updated_at=NOW()
                                        WHERE id=$1`, r.id)
			}
		}
		_ = tx.Commit(ctx)
		time.Sleep(100 * time.Millisecond)
	}
}

// Classifier upserts the buyer's persona profile, racing the other actors
// on the single row.
func Classifier(ctx context.Context, pool *pgxpool.Pool, buyerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		primary := personaTypes[rand.Intn(len(personaTypes))]
		confidence := float64(rand.Intn(10001)) / 100
		_, err := pool.Exec(ctx, `INSERT INTO buyer_persona_profiles
                        (buyer_id, primary_type, confidence, scarcity_score, roi_score, lifestyle_score, events_analyzed, classified_at)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
                        ON CONFLICT (buyer_id) DO UPDATE SET
                            primary_type = EXCLUDED.primary_type,
                            confidence = EXCLUDED.confidence,
                            scarcity_score = EXCLUDED.scarcity_score,
                            roi_score = EXCLUDED.roi_score,
                            lifestyle_score = EXCLUDED.lifestyle_score,
                            events_analyzed = EXCLUDED.events_analyzed,
                            classified_at = EXCLUDED.classified_at`,
			buyerID, primary, confidence, rand.Intn(100), rand.Intn(100), rand.Intn(100), rand.Intn(200))
		if err != nil {
			return fmt.Errorf("classifier upsert: %w", err)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
