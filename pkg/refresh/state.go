package refresh

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/etafeed"
	"github.com/travigo/transferboard/pkg/transfers"
	"golang.org/x/exp/slices"
)

// State is everything the driver shows next to the table. It is only ever
// replaced, never mutated in place.
type State struct {
	Table       *transfers.ComparisonTable
	LastUpdated time.Time
	Counter     int
}

// Initial is the state after the first build; its counter starts at zero.
func Initial(table *transfers.ComparisonTable, now time.Time) State {
	return State{
		Table:       table,
		LastUpdated: now,
		Counter:     0,
	}
}

func Advance(previous State, table *transfers.ComparisonTable, now time.Time) State {
	return State{
		Table:       table,
		LastUpdated: now,
		Counter:     previous.Counter + 1,
	}
}

// Countdown is the time left until the next refresh, counted in whole elapsed
// seconds and never negative.
func (s State) Countdown(now time.Time, interval time.Duration) time.Duration {
	elapsed := now.Sub(s.LastUpdated).Truncate(time.Second)

	remaining := interval - elapsed
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (s State) Rows() []ctdf.ComparisonRow {
	if s.Table == nil {
		return []ctdf.ComparisonRow{}
	}

	return s.Table.Rows
}

// Snapshot returns a copy that shares no slices or maps with s.
func (s State) Snapshot() State {
	snapshot := s
	if s.Table == nil {
		return snapshot
	}

	table := &transfers.ComparisonTable{
		GeneratedAt: s.Table.GeneratedAt,
		Sources:     map[string][]etafeed.SourceResult{},
	}

	if err := copier.CopyWithOption(&table.Rows, &s.Table.Rows, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy comparison rows")
	}
	if table.Rows == nil {
		table.Rows = []ctdf.ComparisonRow{}
	}

	for routeID, sources := range s.Table.Sources {
		table.Sources[routeID] = slices.Clone(sources)
	}

	snapshot.Table = table

	return snapshot
}
