package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tharaga/event"
)

const (
	evaluationWindow   = 24 * time.Hour
	contactHistorySize = 20
)

// ErrMissingIDs signals a request without both required identifiers.
var ErrMissingIDs = errors.New("readiness: buyer and property ids required")

// EventSource provides the behavioral events the evaluator scores.
type EventSource interface {
	ListRecent(ctx context.Context, buyerID, propertyID string, since time.Time) ([]event.Signal, error)
	ListLatestForBuyer(ctx context.Context, buyerID string, limit int) ([]event.Signal, error)
}

// Evaluator scores one buyer+property pair against the signal catalog.
type Evaluator struct {
	events   EventSource
	triggers TriggerLog
	catalog  []Definition
	now      func() time.Time
	idGen    func() string
}

func NewEvaluator(events EventSource, triggers TriggerLog) *Evaluator {
	return &Evaluator{
		events:   events,
		triggers: triggers,
		catalog:  Catalog(),
		now:      time.Now,
		idGen:    func() string { return uuid.NewString() },
	}
}

func (e *Evaluator) WithCatalog(catalog []Definition) *Evaluator {
	e.catalog = catalog
	return e
}

func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

func (e *Evaluator) WithIDGenerator(gen func() string) *Evaluator {
	e.idGen = gen
	return e
}

// Evaluate fetches the pair's events from the trailing 24h window, applies
// every catalog rule, appends one trigger row per match, and buckets the
// summed weights into an urgency tier. The score never depends on event
// ordering; re-running with unchanged events yields the same result while
// appending a fresh batch of trigger rows.
func (e *Evaluator) Evaluate(ctx context.Context, buyerID, propertyID string) (Result, error) {
	if buyerID == "" || propertyID == "" {
		return Result{}, ErrMissingIDs
	}

	now := e.now()
	signals, err := e.events.ListRecent(ctx, buyerID, propertyID, now.Add(-evaluationWindow))
	if err != nil {
		return Result{}, fmt.Errorf("readiness: fetch signals: %w", err)
	}

	sessionID := e.idGen()
	if len(signals) > 0 && signals[0].SessionID != "" {
		sessionID = signals[0].SessionID
	}
	evaluationID := e.idGen()

	result := Result{
		BuyerID:        buyerID,
		PropertyID:     propertyID,
		SignalsMet:     []string{},
		SignalsMissing: []string{},
	}

	for _, def := range e.catalog {
		if !def.Match(signals) {
			result.SignalsMissing = append(result.SignalsMissing, def.Name)
			continue
		}

		result.Score += def.Weight
		result.SignalsMet = append(result.SignalsMet, def.Name)

		if err := e.triggers.Insert(ctx, Trigger{
			BuyerID:      buyerID,
			PropertyID:   propertyID,
			SignalName:   def.Name,
			SignalWeight: def.Weight,
			SessionID:    sessionID,
			EvaluationID: evaluationID,
		}); err != nil {
			return Result{}, err
		}
	}

	result.Urgency = UrgencyFor(result.Score)
	result.RecommendedAction = ActionFor(result.Urgency)
	result.OptimalContactTime = e.optimalContactTime(ctx, buyerID, now)

	return result, nil
}

// optimalContactTime degrades to the default slot on any fetch failure or
// absence of history rather than failing the evaluation.
func (e *Evaluator) optimalContactTime(ctx context.Context, buyerID string, now time.Time) time.Time {
	history, err := e.events.ListLatestForBuyer(ctx, buyerID, contactHistorySize)
	if err != nil {
		history = nil
	}
	return bestContactTime(history, now)
}
