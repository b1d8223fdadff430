package readiness

import "time"

// Result is the outcome of one evaluation. Computed fresh per request,
// never cached.
type Result struct {
	BuyerID            string
	PropertyID         string
	Score              int
	SignalsMet         []string
	SignalsMissing     []string
	Urgency            Urgency
	RecommendedAction  string
	OptimalContactTime time.Time
}

// Trigger is one append-only row recording a matched signal. Repeated
// evaluations of the same pair append again; the evaluation id groups the
// rows of a single run so downstream consumers can deduplicate.
type Trigger struct {
	BuyerID      string
	PropertyID   string
	SignalName   string
	SignalWeight int
	SessionID    string
	EvaluationID string
}
