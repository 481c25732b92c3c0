package transfers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/etafeed"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, ctdf.DisplayLocation)

type stubFetcher struct {
	mu       sync.Mutex
	arrivals map[string][]time.Duration
	calls    map[string]int
}

func newStubFetcher(arrivals map[string][]time.Duration) *stubFetcher {
	return &stubFetcher{arrivals: arrivals, calls: map[string]int{}}
}

func (s *stubFetcher) FetchArrivals(_ context.Context, routeID string, endpoints []string, now time.Time, maxResults int) etafeed.RouteArrivals {
	s.mu.Lock()
	s.calls[routeID]++
	s.mu.Unlock()

	result := etafeed.RouteArrivals{RouteID: routeID, Arrivals: []ctdf.ArrivalEntry{}}
	for _, offset := range s.arrivals[routeID] {
		instant := now.Add(offset)
		result.Arrivals = append(result.Arrivals, ctdf.ArrivalEntry{
			RouteID:          routeID,
			ClockTime:        etafeed.ClockTime(instant),
			RemainingMinutes: etafeed.RemainingMinutes(instant, now),
			Instant:          instant,
		})
	}
	for _, endpoint := range endpoints {
		result.Sources = append(result.Sources, etafeed.SourceResult{URL: endpoint, Status: etafeed.SourceStatusSuccess})
	}

	return result
}

func endpoints(routeIDs ...string) map[string]ctdf.RouteEndpoint {
	endpointsByRoute := map[string]ctdf.RouteEndpoint{}
	for _, routeID := range routeIDs {
		endpointsByRoute[routeID] = ctdf.RouteEndpoint{RouteID: routeID, URLs: []string{"http://feed.invalid/" + routeID}}
	}

	return endpointsByRoute
}

func TestBuildTransferScenario(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{
		"A": {5 * time.Minute, 20 * time.Minute},
		"B": {15 * time.Minute, 30 * time.Minute},
	})
	matcher := NewMatcher(fetcher)

	rows, err := matcher.BuildComparisonTable(context.Background(), []ctdf.RoutePairConfig{
		{RouteA: "A", RouteB: "B", TransferBufferMinutes: 7, AlightDescription: "Interchange"},
	}, endpoints("A", "B"), testNow)
	require.NoError(t, err)

	assert.Equal(t, []ctdf.ComparisonRow{
		{RouteA: "A", ArrivalClockTimeA: "08:05:00", RemainingMinutesA: 5, AlightDescription: "Interchange", RouteB: "B", ArrivalClockTimeB: "08:15:00", RemainingMinutesB: 15, TransferSlack: 3},
		{RouteA: "A", ArrivalClockTimeA: "08:05:00", RemainingMinutesA: 5, AlightDescription: "Interchange", RouteB: "B", ArrivalClockTimeB: "08:30:00", RemainingMinutesB: 30, TransferSlack: 18},
		{RouteA: "A", ArrivalClockTimeA: "08:20:00", RemainingMinutesA: 20, AlightDescription: "Interchange", RouteB: "B", ArrivalClockTimeB: "08:30:00", RemainingMinutesB: 30, TransferSlack: 3},
	}, rows)
}

func TestBuildKeepsZeroSlack(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{
		"33":  {3 * time.Minute},
		"A26": {10 * time.Minute, 11 * time.Minute, 9 * time.Minute},
	})

	rows, err := NewMatcher(fetcher).BuildComparisonTable(context.Background(), []ctdf.RoutePairConfig{
		{RouteA: "33", RouteB: "A26", TransferBufferMinutes: 7},
	}, endpoints("33", "A26"), testNow)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].TransferSlack)
	assert.Equal(t, 1, rows[1].TransferSlack)
}

func TestBuildOrdersAcrossPairs(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{
		"33":   {2 * time.Minute, 4 * time.Minute},
		"234D": {1 * time.Minute},
		"A26":  {25 * time.Minute},
		"A28":  {12 * time.Minute},
	})
	pairs := []ctdf.RoutePairConfig{
		{RouteA: "33", RouteB: "A26", TransferBufferMinutes: 7},
		{RouteA: "33", RouteB: "A28", TransferBufferMinutes: 7},
		{RouteA: "234D", RouteB: "A26", TransferBufferMinutes: 8},
	}

	table, err := NewMatcher(fetcher).Build(context.Background(), pairs, endpoints("33", "234D", "A26", "A28"), testNow)
	require.NoError(t, err)

	var order [][2]string
	for _, row := range table.Rows {
		assert.GreaterOrEqual(t, row.RemainingMinutesB-pairBuffer(pairs, row)-row.RemainingMinutesA, 0)
		order = append(order, [2]string{row.RouteB, row.ArrivalClockTimeA})
	}

	assert.Equal(t, [][2]string{
		{"A28", "08:02:00"},
		{"A28", "08:04:00"},
		{"A26", "08:01:00"},
		{"A26", "08:02:00"},
		{"A26", "08:04:00"},
	}, order)
}

func pairBuffer(pairs []ctdf.RoutePairConfig, row ctdf.ComparisonRow) int {
	for _, pair := range pairs {
		if pair.RouteA == row.RouteA && pair.RouteB == row.RouteB {
			return pair.TransferBufferMinutes
		}
	}

	return 0
}

func TestBuildFetchesEachRouteOnce(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{})
	pairs := []ctdf.RoutePairConfig{
		{RouteA: "33", RouteB: "A26", TransferBufferMinutes: 7},
		{RouteA: "33", RouteB: "A28", TransferBufferMinutes: 7},
		{RouteA: "33", RouteB: "A29", TransferBufferMinutes: 7},
		{RouteA: "234D", RouteB: "A26", TransferBufferMinutes: 8},
	}

	table, err := NewMatcher(fetcher).Build(context.Background(), pairs, endpoints("33", "234D", "A26", "A28", "A29"), testNow)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"33": 1, "A26": 1, "A28": 1, "A29": 1, "234D": 1}, fetcher.calls)
	assert.Len(t, table.Sources, 5)
}

func TestBuildEmptyIsNotAnError(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{
		"297": {20 * time.Minute},
		"A25": {5 * time.Minute},
	})

	table, err := NewMatcher(fetcher).Build(context.Background(), []ctdf.RoutePairConfig{
		{RouteA: "297", RouteB: "A25", TransferBufferMinutes: 12},
	}, endpoints("297", "A25"), testNow)
	require.NoError(t, err)

	assert.True(t, table.Empty())
	assert.NotNil(t, table.Rows)
	assert.Empty(t, table.Rows)
}

func TestBuildFailsFastOnConfigurationErrors(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{})
	matcher := NewMatcher(fetcher)

	_, err := matcher.Build(context.Background(), []ctdf.RoutePairConfig{
		{RouteA: "33", RouteB: "A99", TransferBufferMinutes: 7},
	}, endpoints("33"), testNow)
	assert.ErrorIs(t, err, ErrUnknownRoute)

	_, err = matcher.Build(context.Background(), []ctdf.RoutePairConfig{
		{RouteA: "33", RouteB: "A26", TransferBufferMinutes: -1},
	}, endpoints("33", "A26"), testNow)
	assert.ErrorIs(t, err, ErrInvalidPair)

	noURLs := endpoints("33")
	noURLs["A26"] = ctdf.RouteEndpoint{RouteID: "A26"}
	_, err = matcher.Build(context.Background(), []ctdf.RoutePairConfig{
		{RouteA: "33", RouteB: "A26", TransferBufferMinutes: 7},
	}, noURLs, testNow)
	assert.ErrorIs(t, err, ErrNoEndpoints)

	assert.Empty(t, fetcher.calls)
}

func TestSortRankedRowsUnknownInstantLast(t *testing.T) {
	rows := []rankedRow{
		{row: ctdf.ComparisonRow{ArrivalClockTimeA: "08:01:00", RouteB: "unknown"}},
		{row: ctdf.ComparisonRow{ArrivalClockTimeA: "08:09:00"}, arrivalInstantB: testNow.Add(time.Minute)},
		{row: ctdf.ComparisonRow{ArrivalClockTimeA: "08:03:00"}, arrivalInstantB: testNow.Add(time.Minute)},
	}

	sortRankedRows(rows)

	assert.Equal(t, "08:03:00", rows[0].row.ArrivalClockTimeA)
	assert.Equal(t, "08:09:00", rows[1].row.ArrivalClockTimeA)
	assert.Equal(t, "unknown", rows[2].row.RouteB)
}

func TestComparisonRowJSONHasNoInstant(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{
		"A": {time.Minute},
		"B": {10 * time.Minute},
	})

	rows, err := NewMatcher(fetcher).BuildComparisonTable(context.Background(), []ctdf.RoutePairConfig{
		{RouteA: "A", RouteB: "B", TransferBufferMinutes: 2},
	}, endpoints("A", "B"), testNow)
	require.NoError(t, err)

	encoded, err := json.Marshal(rows)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Len(t, decoded, 1)
	assert.Len(t, decoded[0], 8)
	assert.NotContains(t, decoded[0], "ArrivalInstantB")
}

func feedHandler(t *testing.T, routeID string, offsets ...time.Duration) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		var items []map[string]string
		for _, offset := range offsets {
			items = append(items, map[string]string{
				"route": routeID,
				"eta":   testNow.Add(offset).Format(time.RFC3339),
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
	}
}

func TestBuildWithLiveFeeds(t *testing.T) {
	routeA := httptest.NewServer(feedHandler(t, "33", 5*time.Minute, 20*time.Minute))
	defer routeA.Close()
	routeB := httptest.NewServer(feedHandler(t, "A26", 15*time.Minute, 30*time.Minute))
	defer routeB.Close()
	hanging := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer hanging.Close()

	matcher := NewMatcher(etafeed.NewFetcher(200 * time.Millisecond))
	pairs := []ctdf.RoutePairConfig{{RouteA: "33", RouteB: "A26", TransferBufferMinutes: 7, AlightDescription: "Wong Tai Sin"}}
	endpointsByRoute := map[string]ctdf.RouteEndpoint{
		"33":  {RouteID: "33", URLs: []string{routeA.URL}},
		"A26": {RouteID: "A26", URLs: []string{hanging.URL, routeB.URL}},
	}

	first, err := matcher.Build(context.Background(), pairs, endpointsByRoute, testNow)
	require.NoError(t, err)
	second, err := matcher.Build(context.Background(), pairs, endpointsByRoute, testNow)
	require.NoError(t, err)

	require.Len(t, first.Rows, 3)
	assert.Equal(t, []int{3, 18, 3}, []int{first.Rows[0].TransferSlack, first.Rows[1].TransferSlack, first.Rows[2].TransferSlack})
	assert.Equal(t, 1, first.SkippedSources())

	firstJSON, err := json.Marshal(first.Rows)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second.Rows)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestBuildAllFeedsFailForOnePair(t *testing.T) {
	fetcher := newStubFetcher(map[string][]time.Duration{
		"33":  {2 * time.Minute},
		"A26": {20 * time.Minute},
	})
	pairs := []ctdf.RoutePairConfig{
		{RouteA: "608", RouteB: "A25", TransferBufferMinutes: 12},
		{RouteA: "33", RouteB: "A26", TransferBufferMinutes: 7},
	}

	rows, err := NewMatcher(fetcher).BuildComparisonTable(context.Background(), pairs, endpoints("608", "A25", "33", "A26"), testNow)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "33", rows[0].RouteA)
}
