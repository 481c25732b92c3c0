package etafeed

import (
	"fmt"
	"time"

	"github.com/travigo/transferboard/pkg/ctdf"
)

var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// Feeds without an offset are in the operator's own civil time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 arrival timestamp into an absolute instant.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, ctdf.DisplayLocation); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func ClockTime(instant time.Time) string {
	return instant.In(ctdf.DisplayLocation).Format(ctdf.ClockTimeFormat)
}

// RemainingMinutes floors the time until instant to whole minutes. Callers
// only pass instants after now, so truncation is a floor.
func RemainingMinutes(instant time.Time, now time.Time) int {
	return int(instant.Sub(now) / time.Minute)
}
