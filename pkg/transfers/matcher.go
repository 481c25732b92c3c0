package transfers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/etafeed"
	"github.com/travigo/transferboard/pkg/util"
)

// DefaultMaxResults is the number of upcoming arrivals considered per route.
const DefaultMaxResults = 5

const defaultMaxConcurrency = 8

var (
	ErrUnknownRoute = errors.New("route pair references unknown route")
	ErrNoEndpoints  = errors.New("route has no feed endpoints")
	ErrInvalidPair  = errors.New("invalid route pair")
)

type ArrivalFetcher interface {
	FetchArrivals(ctx context.Context, routeID string, endpoints []string, now time.Time, maxResults int) etafeed.RouteArrivals
}

// Matcher turns route pair configuration and live ETAs into the ordered list
// of feasible transfers. It keeps no state between invocations.
type Matcher struct {
	Fetcher        ArrivalFetcher
	MaxResults     int
	MaxConcurrency int
}

func NewMatcher(fetcher ArrivalFetcher) *Matcher {
	return &Matcher{
		Fetcher:        fetcher,
		MaxResults:     DefaultMaxResults,
		MaxConcurrency: defaultMaxConcurrency,
	}
}

// BuildComparisonTable returns only the rows of Build. An empty, non-nil slice
// with a nil error means no transfer is currently feasible.
func (m *Matcher) BuildComparisonTable(ctx context.Context, pairs []ctdf.RoutePairConfig, endpointsByRoute map[string]ctdf.RouteEndpoint, now time.Time) ([]ctdf.ComparisonRow, error) {
	table, err := m.Build(ctx, pairs, endpointsByRoute, now)
	if err != nil {
		return nil, err
	}

	return table.Rows, nil
}

func (m *Matcher) Build(ctx context.Context, pairs []ctdf.RoutePairConfig, endpointsByRoute map[string]ctdf.RouteEndpoint, now time.Time) (*ComparisonTable, error) {
	routeIDs, err := ValidatePairs(pairs, endpointsByRoute)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	arrivalsByRoute := m.fetchRoutes(ctx, routeIDs, endpointsByRoute, now)

	var ranked []rankedRow
	for _, pair := range pairs {
		ranked = append(ranked, matchPair(pair, arrivalsByRoute[pair.RouteA].Arrivals, arrivalsByRoute[pair.RouteB].Arrivals)...)
	}

	sortRankedRows(ranked)

	table := &ComparisonTable{
		GeneratedAt: now,
		Rows:        stripRanking(ranked),
		Sources:     map[string][]etafeed.SourceResult{},
	}
	for _, routeID := range routeIDs {
		table.Sources[routeID] = arrivalsByRoute[routeID].Sources
	}

	log.Debug().
		Int("pairs", len(pairs)).
		Int("routes", len(routeIDs)).
		Int("rows", len(table.Rows)).
		Int("skippedsources", table.SkippedSources()).
		Str("duration", time.Since(startTime).String()).
		Msg("Built transfer comparison table")

	return table, nil
}

// ValidatePairs checks every pair against the endpoint map and returns the
// distinct route identifiers in first-appearance order.
func ValidatePairs(pairs []ctdf.RoutePairConfig, endpointsByRoute map[string]ctdf.RouteEndpoint) ([]string, error) {
	var referenced []string

	for i, pair := range pairs {
		if pair.TransferBufferMinutes < 0 {
			return nil, fmt.Errorf("%w: pair %d (%s -> %s) has negative transfer buffer %d", ErrInvalidPair, i, pair.RouteA, pair.RouteB, pair.TransferBufferMinutes)
		}

		for _, routeID := range pair.RouteIDs() {
			endpoint, exists := endpointsByRoute[routeID]
			if !exists {
				return nil, fmt.Errorf("%w: pair %d references %q", ErrUnknownRoute, i, routeID)
			}
			if len(endpoint.URLs) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrNoEndpoints, routeID)
			}
		}

		referenced = append(referenced, pair.RouteIDs()...)
	}

	return util.RemoveDuplicateStrings(referenced, nil), nil
}

// fetchRoutes fetches each route once. Every goroutine fills its own result
// and the map is only assembled after Wait returns.
func (m *Matcher) fetchRoutes(ctx context.Context, routeIDs []string, endpointsByRoute map[string]ctdf.RouteEndpoint, now time.Time) map[string]etafeed.RouteArrivals {
	maxResults := m.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	maxConcurrency := m.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	p := pool.NewWithResults[etafeed.RouteArrivals]().WithMaxGoroutines(maxConcurrency)

	for _, routeID := range routeIDs {
		urls := endpointsByRoute[routeID].URLs

		p.Go(func() etafeed.RouteArrivals {
			routeArrivals := m.Fetcher.FetchArrivals(ctx, routeID, urls, now, maxResults)
			routeArrivals.RouteID = routeID

			return routeArrivals
		})
	}

	arrivalsByRoute := map[string]etafeed.RouteArrivals{}
	for _, routeArrivals := range p.Wait() {
		arrivalsByRoute[routeArrivals.RouteID] = routeArrivals
	}

	return arrivalsByRoute
}

func matchPair(pair ctdf.RoutePairConfig, arrivalsA []ctdf.ArrivalEntry, arrivalsB []ctdf.ArrivalEntry) []rankedRow {
	var rows []rankedRow

	for _, arrivalA := range arrivalsA {
		for _, arrivalB := range arrivalsB {
			slack := ctdf.TransferSlack(arrivalA.RemainingMinutes, pair.TransferBufferMinutes, arrivalB.RemainingMinutes)
			if slack < 0 {
				continue
			}

			rows = append(rows, rankedRow{
				row: ctdf.ComparisonRow{
					RouteA:            pair.RouteA,
					ArrivalClockTimeA: arrivalA.ClockTime,
					RemainingMinutesA: arrivalA.RemainingMinutes,
					AlightDescription: pair.AlightDescription,
					RouteB:            pair.RouteB,
					ArrivalClockTimeB: arrivalB.ClockTime,
					RemainingMinutesB: arrivalB.RemainingMinutes,
					TransferSlack:     slack,
				},
				arrivalInstantB: arrivalB.Instant,
			})
		}
	}

	return rows
}
