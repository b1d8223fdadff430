package readiness

// Urgency buckets a readiness score. Ordering: LOW < MEDIUM < HIGH < CRITICAL.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// Recommended actions by urgency tier.
const (
	ActionImmediatePhoneCall       = "IMMEDIATE_PHONE_CALL"
	ActionSendPersonalizedWhatsApp = "SEND_PERSONALIZED_WHATSAPP"
	ActionTriggerEmailSequence     = "TRIGGER_EMAIL_SEQUENCE"
	ActionContinueNurturing        = "CONTINUE_NURTURING"
)

// UrgencyFor maps a score onto its tier. Single source of truth for both the
// evaluator and the workflow dispatcher; thresholds are inclusive lower
// bounds, so the tier is a non-decreasing step function of score.
func UrgencyFor(score int) Urgency {
	switch {
	case score >= 8:
		return UrgencyCritical
	case score >= 6:
		return UrgencyHigh
	case score >= 4:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ActionFor returns the recommended follow-up for a tier.
func ActionFor(urgency Urgency) string {
	switch urgency {
	case UrgencyCritical:
		return ActionImmediatePhoneCall
	case UrgencyHigh:
		return ActionSendPersonalizedWhatsApp
	case UrgencyMedium:
		return ActionTriggerEmailSequence
	default:
		return ActionContinueNurturing
	}
}
