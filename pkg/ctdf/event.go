package ctdf

import (
	"time"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Body      interface{}
}

type EventType string

const (
	EventTypeTransferTableRefreshed EventType = "TransferTableRefreshed"
	EventTypeTransferTableEmpty     EventType = "TransferTableEmpty"
)

// TransferTableSummary is the body of the refresh events.
type TransferTableSummary struct {
	Counter     int
	LastUpdated time.Time
	Rows        []ComparisonRow

	SkippedSources int
}
