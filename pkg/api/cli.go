package api

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/api/routes"
	"github.com/travigo/transferboard/pkg/board"
	"github.com/travigo/transferboard/pkg/cachedresults"
	"github.com/travigo/transferboard/pkg/events"
	"github.com/travigo/transferboard/pkg/redis_client"
	"github.com/travigo/transferboard/pkg/refresh"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the transfer board web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server with an in-process refresh loop",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					board.ConfigFlag,
				},
				Action: func(c *cli.Context) error {
					components, err := board.Setup(c.String("config"))
					if err != nil {
						return err
					}

					store, publishers, err := setupPublishers(components)
					if err != nil {
						return err
					}
					defer redis_client.Close()

					ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					updates := components.Scheduler(publishers...).Run(ctx)
					go func() {
						for range updates {
						}
						log.Info().Msg("Refresh loop finished")
					}()

					webApp := NewApp(store, &routes.RouteDirectory{
						Routes:     components.Config.Routes,
						Pairs:      components.Config.RoutePairs(),
						Fetcher:    components.Fetcher,
						MaxResults: components.Config.MaxResults,
					})

					go func() {
						<-ctx.Done()
						webApp.Shutdown()
					}()

					log.Info().Str("listen", c.String("listen")).Msg("Starting web API")

					return webApp.Listen(c.String("listen"))
				},
			},
		},
	}
}

// setupPublishers uses redis for the snapshot store and refresh events when
// it is configured, and an in-memory store otherwise.
func setupPublishers(components *board.Components) (cachedresults.Store, []refresh.Publisher, error) {
	err := redis_client.Connect()
	if errors.Is(err, redis_client.ErrNotConfigured) {
		log.Info().Msg("Redis not configured, keeping transfer table in memory")

		store := cachedresults.NewMemoryStore()
		return store, []refresh.Publisher{store}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	store := cachedresults.NewRedisStore(redis_client.Client, 4*components.Config.RefreshEvery())

	eventsPublisher, err := events.NewPublisher(redis_client.QueueConnection)
	if err != nil {
		return nil, nil, err
	}

	return store, []refresh.Publisher{store, eventsPublisher}, nil
}
