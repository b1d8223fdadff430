package property

import "time"

// Listing captures the property fields the automation layer renders into
// outbound messages.
type Listing struct {
	ID             string
	BuilderID      string
	Title          string
	City           string
	PriceINR       int64
	AreaSqft       int
	UnitsRemaining int
	CreatedAt      time.Time
}
