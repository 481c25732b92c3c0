package etafeed

import (
	"errors"
	"time"

	"github.com/travigo/transferboard/pkg/ctdf"
)

var (
	ErrTransport        = errors.New("feed transport failure")
	ErrHTTPStatus       = errors.New("feed returned non-success status")
	ErrMalformedPayload = errors.New("feed payload malformed")
)

type SourceStatus string

const (
	SourceStatusSuccess SourceStatus = "Success"
	SourceStatusSkipped SourceStatus = "Skipped"
)

// SourceResult records what happened to one endpoint during a fetch.
type SourceResult struct {
	URL    string       `groups:"detailed"`
	Status SourceStatus `groups:"detailed"`
	Reason string       `groups:"detailed"`
	Err    error        `groups:"internal" json:"-"`

	Items          int `groups:"detailed"`
	Retained       int `groups:"detailed"`
	DiscardedItems int `groups:"detailed"`

	Duration time.Duration `groups:"detailed"`
}

func (s SourceResult) Skipped() bool {
	return s.Status == SourceStatusSkipped
}

// RouteArrivals is the outcome of fetching every endpoint of one route.
type RouteArrivals struct {
	RouteID  string              `groups:"basic"`
	Arrivals []ctdf.ArrivalEntry `groups:"basic"`
	Sources  []SourceResult      `groups:"detailed"`
}

func (r RouteArrivals) SkippedSources() int {
	skipped := 0
	for _, source := range r.Sources {
		if source.Skipped() {
			skipped++
		}
	}

	return skipped
}
