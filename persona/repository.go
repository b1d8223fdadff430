package persona

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGProfileStore implements ProfileStore backed by PostgreSQL. Profiles are
// keyed on buyer id; reclassification replaces the previous row.
type PGProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *PGProfileStore {
	return &PGProfileStore{pool: pool}
}

func (s *PGProfileStore) Upsert(ctx context.Context, profile Profile) error {
	const query = `
		INSERT INTO buyer_persona_profiles
			(buyer_id, primary_type, secondary_type, confidence, scarcity_score, roi_score, lifestyle_score, top_indicators, events_analyzed, classified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (buyer_id) DO UPDATE SET
			primary_type = EXCLUDED.primary_type,
			secondary_type = EXCLUDED.secondary_type,
			confidence = EXCLUDED.confidence,
			scarcity_score = EXCLUDED.scarcity_score,
			roi_score = EXCLUDED.roi_score,
			lifestyle_score = EXCLUDED.lifestyle_score,
			top_indicators = EXCLUDED.top_indicators,
			events_analyzed = EXCLUDED.events_analyzed,
			classified_at = EXCLUDED.classified_at
	`

	var secondary *string
	if profile.Secondary != nil {
		v := string(*profile.Secondary)
		secondary = &v
	}

	if _, err := s.pool.Exec(ctx, query,
		profile.BuyerID,
		profile.Primary,
		secondary,
		profile.Confidence,
		profile.ScarcityScore,
		profile.ROIScore,
		profile.LifestyleScore,
		profile.TopIndicators,
		profile.EventsAnalyzed,
		profile.ClassifiedAt,
	); err != nil {
		return fmt.Errorf("persona: upsert profile: %w", err)
	}
	return nil
}

// GetByBuyer returns the stored profile, if any.
func (s *PGProfileStore) GetByBuyer(ctx context.Context, buyerID string) (Profile, bool, error) {
	const query = `
		SELECT buyer_id, primary_type, secondary_type, confidence, scarcity_score, roi_score, lifestyle_score, top_indicators, events_analyzed, classified_at
		FROM buyer_persona_profiles
		WHERE buyer_id = $1
	`

	var (
		profile   Profile
		secondary *string
	)
	err := s.pool.QueryRow(ctx, query, buyerID).Scan(
		&profile.BuyerID,
		&profile.Primary,
		&secondary,
		&profile.Confidence,
		&profile.ScarcityScore,
		&profile.ROIScore,
		&profile.LifestyleScore,
		&profile.TopIndicators,
		&profile.EventsAnalyzed,
		&profile.ClassifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, false, nil
		}
		return Profile{}, false, fmt.Errorf("persona: get profile: %w", err)
	}
	if secondary != nil {
		t := Type(*secondary)
		profile.Secondary = &t
	}
	return profile, true, nil
}
