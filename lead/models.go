package lead

import "time"

// Buyer captures the lead fields the automation layer needs for dispatching.
type Buyer struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	City      string
	CreatedAt time.Time
}
