package refresh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/etafeed"
	"github.com/travigo/transferboard/pkg/transfers"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, ctdf.DisplayLocation)

func sampleTable() *transfers.ComparisonTable {
	return &transfers.ComparisonTable{
		GeneratedAt: testNow,
		Rows: []ctdf.ComparisonRow{
			{RouteA: "33", ArrivalClockTimeA: "08:05:00", RemainingMinutesA: 5, RouteB: "A26", ArrivalClockTimeB: "08:15:00", RemainingMinutesB: 15, TransferSlack: 3},
		},
		Sources: map[string][]etafeed.SourceResult{
			"33": {{URL: "http://feed.invalid/33", Status: etafeed.SourceStatusSuccess, Retained: 1}},
		},
	}
}

func TestInitialAndAdvance(t *testing.T) {
	initial := Initial(sampleTable(), testNow)
	assert.Equal(t, 0, initial.Counter)
	assert.Equal(t, testNow, initial.LastUpdated)

	later := testNow.Add(30 * time.Second)
	next := Advance(initial, &transfers.ComparisonTable{Rows: []ctdf.ComparisonRow{}}, later)
	assert.Equal(t, 1, next.Counter)
	assert.Equal(t, later, next.LastUpdated)
	assert.Empty(t, next.Rows())

	assert.Equal(t, 0, initial.Counter)
	assert.Len(t, initial.Rows(), 1)
}

func TestCountdown(t *testing.T) {
	state := Initial(sampleTable(), testNow)

	assert.Equal(t, 30*time.Second, state.Countdown(testNow, 30*time.Second))
	assert.Equal(t, 18*time.Second, state.Countdown(testNow.Add(12900*time.Millisecond), 30*time.Second))
	assert.Equal(t, time.Duration(0), state.Countdown(testNow.Add(45*time.Second), 30*time.Second))
}

func TestRowsOfEmptyState(t *testing.T) {
	var state State

	assert.NotNil(t, state.Rows())
	assert.Empty(t, state.Rows())
}

func TestSnapshotIsIndependent(t *testing.T) {
	state := Initial(sampleTable(), testNow)

	snapshot := state.Snapshot()
	snapshot.Table.Rows[0].TransferSlack = 99
	snapshot.Table.Sources["33"][0].Retained = 42
	snapshot.Table.Sources["A26"] = nil

	assert.Equal(t, 3, state.Table.Rows[0].TransferSlack)
	assert.Equal(t, 1, state.Table.Sources["33"][0].Retained)
	assert.Len(t, state.Table.Sources, 1)
	assert.Equal(t, state.LastUpdated, snapshot.LastUpdated)
	assert.Equal(t, testNow, snapshot.Table.GeneratedAt)
}

func TestSnapshotOfEmptyTableKeepsEmptyRows(t *testing.T) {
	state := Initial(&transfers.ComparisonTable{Rows: []ctdf.ComparisonRow{}}, testNow)

	snapshot := state.Snapshot()

	assert.NotNil(t, snapshot.Table.Rows)
	assert.True(t, snapshot.Table.Empty())
}
