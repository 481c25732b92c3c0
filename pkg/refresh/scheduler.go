package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/transfers"
)

const DefaultInterval = 30 * time.Second

type TableBuilder interface {
	Build(ctx context.Context, pairs []ctdf.RoutePairConfig, endpointsByRoute map[string]ctdf.RouteEndpoint, now time.Time) (*transfers.ComparisonTable, error)
}

// Publisher receives every new state, e.g. a cache or a queue.
type Publisher interface {
	Publish(ctx context.Context, state State) error
}

type Scheduler struct {
	Builder   TableBuilder
	Pairs     []ctdf.RoutePairConfig
	Endpoints map[string]ctdf.RouteEndpoint
	Interval  time.Duration

	// Clock is read once per build. Defaults to time.Now.
	Clock func() time.Time

	Publishers []Publisher
}

// Run builds immediately and then once per Interval, sending each new state
// on the returned channel. The channel is closed when ctx is done or a build
// fails on configuration.
func (s *Scheduler) Run(ctx context.Context) <-chan State {
	updates := make(chan State, 1)

	go func() {
		defer close(updates)

		state, err := s.Step(ctx, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to build transfer table")
			return
		}
		if !send(ctx, updates, state) {
			return
		}

		ticker := time.NewTicker(s.interval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Refresh loop stopped")
				return
			case <-ticker.C:
				state, err = s.Step(ctx, &state)
				if err != nil {
					log.Error().Err(err).Msg("Failed to build transfer table")
					return
				}
				if !send(ctx, updates, state) {
					return
				}
			}
		}
	}()

	return updates
}

// Step performs one refresh. previous is nil for the first build.
func (s *Scheduler) Step(ctx context.Context, previous *State) (State, error) {
	now := s.now()
	startTime := time.Now()

	table, err := s.Builder.Build(ctx, s.Pairs, s.Endpoints, now)
	if err != nil {
		return State{}, err
	}

	var state State
	if previous == nil {
		state = Initial(table, now)
	} else {
		state = Advance(*previous, table, now)
	}

	log.Info().
		Int("counter", state.Counter).
		Int("rows", len(table.Rows)).
		Int("routes", len(table.Sources)).
		Int("skippedsources", table.SkippedSources()).
		Str("duration", time.Since(startTime).String()).
		Msg("Refreshed transfer table")

	for _, publisher := range s.Publishers {
		if err := publisher.Publish(ctx, state.Snapshot()); err != nil {
			log.Error().Err(err).Msg("Failed to publish transfer table")
		}
	}

	return state, nil
}

func (s *Scheduler) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}

	return s.Clock()
}

func (s *Scheduler) interval() time.Duration {
	if s.Interval <= 0 {
		return DefaultInterval
	}

	return s.Interval
}

func send(ctx context.Context, updates chan<- State, state State) bool {
	select {
	case updates <- state.Snapshot():
		return true
	case <-ctx.Done():
		return false
	}
}
