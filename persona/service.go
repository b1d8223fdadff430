package persona

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tharaga/event"
)

const classificationWindow = 30 * 24 * time.Hour

// ErrMissingBuyer signals a classify request without a buyer id.
var ErrMissingBuyer = errors.New("persona: buyer id required")

// EventSource provides the buyer's event history across all properties.
type EventSource interface {
	ListForBuyerSince(ctx context.Context, buyerID string, since time.Time) ([]event.Signal, error)
}

// ProfileStore persists classification outcomes.
type ProfileStore interface {
	Upsert(ctx context.Context, profile Profile) error
}

// Service classifies buyers into behavioral archetypes from their tracked
// event history.
type Service struct {
	events   EventSource
	profiles ProfileStore
	now      func() time.Time
}

func NewService(events EventSource, profiles ProfileStore) *Service {
	return &Service{
		events:   events,
		profiles: profiles,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Classify scores each archetype's indicator table against the buyer's
// recent events, upserts the resulting profile, and returns the outcome.
// A buyer with no history defaults to lifestyle_driven at zero confidence
// and writes no profile row.
func (s *Service) Classify(ctx context.Context, buyerID string) (Classification, error) {
	if buyerID == "" {
		return Classification{}, ErrMissingBuyer
	}

	signals, err := s.events.ListForBuyerSince(ctx, buyerID, s.now().Add(-classificationWindow))
	if err != nil {
		return Classification{}, fmt.Errorf("persona: fetch signals: %w", err)
	}

	if len(signals) == 0 {
		return Classification{
			BuyerID:       buyerID,
			Primary:       TypeLifestyleDriven,
			TopIndicators: []string{},
		}, nil
	}

	var indicators []string
	scoreType := func(t Type) int {
		total := 0
		for _, in := range Indicators(t) {
			if in.Matches(signals) {
				total += in.Points
				indicators = append(indicators, in.Name)
			}
		}
		return total
	}

	scores := Scores{
		Scarcity:  scoreType(TypeScarcityDriven),
		ROI:       scoreType(TypeROIDriven),
		Lifestyle: scoreType(TypeLifestyleDriven),
	}

	ranked := rank(scores)
	primary := ranked[0]

	var secondary *Type
	if ranked[1].score >= 50 {
		t := ranked[1].typ
		secondary = &t
	}

	confidence := 0.0
	if total := scores.Scarcity + scores.ROI + scores.Lifestyle; total > 0 {
		confidence = math.Min(100, float64(primary.score)/float64(total)*100)
		confidence = math.Round(confidence*100) / 100
	}

	top := topUnique(indicators, 3)

	profile := Profile{
		BuyerID:        buyerID,
		Primary:        primary.typ,
		Secondary:      secondary,
		Confidence:     confidence,
		ScarcityScore:  scores.Scarcity,
		ROIScore:       scores.ROI,
		LifestyleScore: scores.Lifestyle,
		TopIndicators:  top,
		EventsAnalyzed: len(signals),
		ClassifiedAt:   s.now(),
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return Classification{}, err
	}

	return Classification{
		BuyerID:       buyerID,
		Primary:       primary.typ,
		Secondary:     secondary,
		Confidence:    confidence,
		Scores:        scores,
		TopIndicators: top,
	}, nil
}

type rankedType struct {
	typ   Type
	score int
}

// rank orders the archetypes by score descending; ties keep the fixed
// scarcity, roi, lifestyle order so results are deterministic.
func rank(scores Scores) [3]rankedType {
	out := [3]rankedType{
		{TypeScarcityDriven, scores.Scarcity},
		{TypeROIDriven, scores.ROI},
		{TypeLifestyleDriven, scores.Lifestyle},
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].score > out[j-1].score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func topUnique(names []string, n int) []string {
	seen := map[string]bool{}
	out := make([]string, 0, n)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == n {
			break
		}
	}
	return out
}
