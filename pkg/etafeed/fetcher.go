package etafeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/ctdf"
)

const DefaultTimeout = 5 * time.Second

const userAgent = "transferboard/1.0"

// Fetcher collects upcoming arrivals of a route from its ETA feeds. A failing
// feed is skipped so one degraded endpoint never blanks out the others.
type Fetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// FetchArrivals queries every endpoint in order and returns the arrivals of
// routeID strictly after now, soonest first. maxResults <= 0 means no cap.
func (f *Fetcher) FetchArrivals(ctx context.Context, routeID string, endpoints []string, now time.Time, maxResults int) RouteArrivals {
	routeArrivals := RouteArrivals{
		RouteID:  routeID,
		Arrivals: []ctdf.ArrivalEntry{},
	}

	for _, endpoint := range endpoints {
		startTime := time.Now()

		items, err := f.fetchFeed(ctx, endpoint)
		if err != nil {
			log.Debug().
				Str("route", routeID).
				Str("url", endpoint).
				Err(err).
				Msg("Skipping ETA feed")

			routeArrivals.Sources = append(routeArrivals.Sources, SourceResult{
				URL:      endpoint,
				Status:   SourceStatusSkipped,
				Reason:   err.Error(),
				Err:      err,
				Duration: time.Since(startTime),
			})
			continue
		}

		arrivals, discarded := ExtractArrivals(routeID, items, now)
		routeArrivals.Arrivals = append(routeArrivals.Arrivals, arrivals...)

		routeArrivals.Sources = append(routeArrivals.Sources, SourceResult{
			URL:            endpoint,
			Status:         SourceStatusSuccess,
			Items:          len(items),
			Retained:       len(arrivals),
			DiscardedItems: discarded,
			Duration:       time.Since(startTime),
		})
	}

	sort.SliceStable(routeArrivals.Arrivals, func(i, j int) bool {
		return routeArrivals.Arrivals[i].Instant.Before(routeArrivals.Arrivals[j].Instant)
	})

	if maxResults > 0 && len(routeArrivals.Arrivals) > maxResults {
		routeArrivals.Arrivals = routeArrivals.Arrivals[:maxResults]
	}

	return routeArrivals
}

// ExtractArrivals keeps the items of routeID whose eta parses and is strictly
// after now. discarded counts items that could not be decoded and matching
// items dropped for a bad timestamp.
func ExtractArrivals(routeID string, items []json.RawMessage, now time.Time) (arrivals []ctdf.ArrivalEntry, discarded int) {
	arrivals = []ctdf.ArrivalEntry{}

	for _, raw := range items {
		item, err := decodeFeedItem(raw)
		if err != nil {
			log.Debug().Str("route", routeID).Err(err).Msg("Discarding feed item")
			discarded++
			continue
		}

		if item.Route != routeID || item.ETA == "" {
			continue
		}

		instant, err := ParseTimestamp(item.ETA)
		if err != nil {
			log.Debug().Str("route", routeID).Str("eta", item.ETA).Err(err).Msg("Discarding ETA")
			discarded++
			continue
		}

		if !instant.After(now) {
			continue
		}

		arrivals = append(arrivals, ctdf.ArrivalEntry{
			RouteID:          routeID,
			ClockTime:        ClockTime(instant),
			RemainingMinutes: RemainingMinutes(instant, now),
			Instant:          instant,
		})
	}

	return arrivals, discarded
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) ([]json.RawMessage, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrHTTPStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if len(body) > maxFeedBytes {
		return nil, fmt.Errorf("%w: body larger than %d bytes", ErrMalformedPayload, maxFeedBytes)
	}

	var feed FeedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if feed.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", ErrMalformedPayload)
	}

	return *feed.Data, nil
}
