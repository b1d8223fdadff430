package workflow

import (
	"time"

	"tharaga/readiness"
)

// Tier is the workflow urgency band a dispatch runs under. It is derived
// from the shared readiness tier so the two cannot drift: CRITICAL maps to
// high, HIGH and MEDIUM to medium, LOW to low.
type Tier string

const (
	TierHigh   Tier = "high_urgency"
	TierMedium Tier = "medium_urgency"
	TierLow    Tier = "low_urgency"
)

// TierForScore derives the workflow tier from the readiness score.
func TierForScore(score int) Tier {
	switch readiness.UrgencyFor(score) {
	case readiness.UrgencyCritical:
		return TierHigh
	case readiness.UrgencyHigh, readiness.UrgencyMedium:
		return TierMedium
	default:
		return TierLow
	}
}

// urgencyLabel is what gets stamped on the dispatch record: the readiness
// tier in effect when the workflow ran.
func (t Tier) urgencyLabel() readiness.Urgency {
	switch t {
	case TierHigh:
		return readiness.UrgencyCritical
	case TierMedium:
		return readiness.UrgencyMedium
	default:
		return readiness.UrgencyLow
	}
}

// ActionType is the outbound channel chosen for a dispatch.
type ActionType string

const (
	ActionSendWhatsApp ActionType = "send_whatsapp"
	ActionSendEmail    ActionType = "send_email"
	ActionSendSMS      ActionType = "send_sms"
)

// Status tracks delivery of a dispatch record. pending and failed are
// written here; sent transitions are owned by the external sender except
// when the retry queue re-sends.
type Status string

const (
	StatusPending          Status = "pending"
	StatusSent             Status = "sent"
	StatusFailed           Status = "failed"
	StatusPermanentFailure Status = "permanent_failure"
)

// Message carries the per-channel renderings of one dispatch.
type Message struct {
	WhatsApp string
	Email    string
	SMS      string
}

// DispatchRecord is a persisted intent to contact a buyer. Exactly one row
// per Dispatch invocation; re-invoking for the same pair appends another.
type DispatchRecord struct {
	ID                string
	BuyerID           string
	PropertyID        string
	ActionType        ActionType
	Urgency           readiness.Urgency
	Message           Message
	Status            Status
	Attempts          int
	FailureReason     *string
	FailedAt          *time.Time
	RetryAfter        *time.Time
	ProviderMessageID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
