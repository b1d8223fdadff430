package persona

import "time"

// Type is a buyer's behavioral archetype. It selects message framing in the
// workflow dispatcher and groups the classification indicator tables.
type Type string

const (
	// TypeScarcityDriven buyers respond to exclusivity and limited supply.
	TypeScarcityDriven Type = "scarcity_driven"
	// TypeROIDriven buyers respond to numbers: price per sqft, yield, resale.
	TypeROIDriven Type = "roi_driven"
	// TypeLifestyleDriven buyers respond to schools, community and safety.
	TypeLifestyleDriven Type = "lifestyle_driven"
)

// Profile is the persisted classification for a buyer, upserted on each run.
type Profile struct {
	BuyerID        string
	Primary        Type
	Secondary      *Type
	Confidence     float64
	ScarcityScore  int
	ROIScore       int
	LifestyleScore int
	TopIndicators  []string
	EventsAnalyzed int
	ClassifiedAt   time.Time
}

// Classification is the response-shaped outcome of one run.
type Classification struct {
	BuyerID       string
	Primary       Type
	Secondary     *Type
	Confidence    float64
	Scores        Scores
	TopIndicators []string
}

// Scores carries the per-archetype point totals.
type Scores struct {
	Scarcity  int
	ROI       int
	Lifestyle int
}
