package ctdf

import "time"

// ArrivalEntry is one upcoming arrival of a route at its monitored stop.
// Instant is always strictly after the reference time it was computed against.
type ArrivalEntry struct {
	RouteID          string `groups:"basic"`
	ClockTime        string `groups:"basic"`
	RemainingMinutes int    `groups:"basic"`

	Instant time.Time `groups:"internal" json:"-"`
}
