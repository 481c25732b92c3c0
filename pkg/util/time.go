package util

import (
	"fmt"
	"time"

	iso8601 "github.com/senseyeio/duration"
)

// ParseISODuration converts an ISO 8601 duration such as PT30S into a
// time.Duration. Calendar components are resolved against the Unix epoch.
func ParseISODuration(value string) (time.Duration, error) {
	isoDuration, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", value, err)
	}

	reference := time.Unix(0, 0).UTC()

	return isoDuration.Shift(reference).Sub(reference), nil
}
