package workflow

import (
	"fmt"
	"unicode/utf8"

	"tharaga/persona"
	"tharaga/property"
)

const smsMaxLen = 160

const highUrgencyCTA = "\n\n🔥 You viewed this property multiple times - shall we schedule a visit today? Reply YES to book your exclusive tour!"

// renderMessage builds the per-channel message for a persona and tier. The
// framing follows the buyer's archetype; an unrecognized persona falls back
// to the generic template. High-urgency dispatches append the same-day
// scheduling call to action.
func renderMessage(listing property.Listing, buyerType persona.Type, tier Tier) Message {
	var base string
	switch buyerType {
	case persona.TypeScarcityDriven:
		units := listing.UnitsRemaining
		if units <= 0 {
			units = 2
		}
		base = fmt.Sprintf("⚠️ ONLY %d UNITS LEFT in %s! 🏆 Premium lifestyle awaits", units, listing.Title)
	case persona.TypeROIDriven:
		base = fmt.Sprintf("📊 %s showing strong ROI potential! Price per sq.ft analysis available", listing.Title)
	case persona.TypeLifestyleDriven:
		base = fmt.Sprintf("🏡 %s - Where families thrive! Top-rated schools nearby, vibrant community", listing.Title)
	default:
		base = fmt.Sprintf("🏠 %s - Perfect match for you!", listing.Title)
	}

	if tier == TierHigh {
		base += highUrgencyCTA
	}

	return Message{
		WhatsApp: base,
		Email:    base,
		SMS:      truncate(base, smsMaxLen),
	}
}

// truncate cuts at a rune boundary so an emoji is never split mid-sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
