package board

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/liip/sheriff"
	"github.com/rodaine/table"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/refresh"
	"github.com/travigo/transferboard/pkg/render"
	"github.com/urfave/cli/v2"
)

const clearScreen = "\033[H\033[2J"

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Live transfer board for the configured route pairs",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "refresh the transfer table on an interval and render it to the terminal",
				Flags: []cli.Flag{
					ConfigFlag,
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "append each table instead of redrawing the screen every second",
					},
				},
				Action: func(c *cli.Context) error {
					components, err := Setup(c.String("config"))
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					return runBoard(ctx, components, os.Stdout, c.Bool("plain"))
				},
			},
			{
				Name:  "once",
				Usage: "build the transfer table once and print it",
				Flags: []cli.Flag{
					ConfigFlag,
					&cli.StringFlag{
						Name:  "format",
						Value: "console",
						Usage: "output format: console, csv or json",
					},
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "include per-source fetch results in json output",
					},
				},
				Action: func(c *cli.Context) error {
					components, err := Setup(c.String("config"))
					if err != nil {
						return err
					}

					return printOnce(c.Context, components, os.Stdout, c.String("format"), c.Bool("detailed"), time.Now())
				},
			},
			{
				Name:  "sources",
				Usage: "fetch every configured route once and show what each feed returned",
				Flags: []cli.Flag{
					ConfigFlag,
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "pretty print the full fetch result of every route",
					},
				},
				Action: func(c *cli.Context) error {
					components, err := Setup(c.String("config"))
					if err != nil {
						return err
					}

					return printSources(c.Context, components, os.Stdout, c.Bool("dump"), time.Now())
				},
			},
		},
	}
}

func runBoard(ctx context.Context, components *Components, w io.Writer, plain bool) error {
	scheduler := components.Scheduler()
	updates := scheduler.Run(ctx)

	var redraw <-chan time.Time
	if !plain {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		redraw = ticker.C
	}

	var current *refresh.State

	draw := func() error {
		if current == nil {
			return nil
		}
		if !plain {
			fmt.Fprint(w, clearScreen)
		}
		return render.Console(w, *current, components.Config.RefreshEvery(), time.Now(), components.Rule)
	}

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("refresh loop stopped")
			}
			current = &state

			if err := draw(); err != nil {
				return err
			}
		case <-redraw:
			if err := draw(); err != nil {
				return err
			}
		}
	}
}

func printOnce(ctx context.Context, components *Components, w io.Writer, format string, detailed bool, now time.Time) error {
	switch format {
	case "console", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	scheduler := components.Scheduler()
	scheduler.Clock = func() time.Time { return now }

	state, err := scheduler.Step(ctx, nil)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		return render.CSV(w, state.Rows())
	case "json":
		groups := []string{"basic"}
		if detailed {
			groups = append(groups, "detailed")
		}

		tableReduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: groups,
		}, state.Table)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(tableReduced)
	default:
		return render.Console(w, state, components.Config.RefreshEvery(), now, components.Rule)
	}
}

func printSources(ctx context.Context, components *Components, w io.Writer, dump bool, now time.Time) error {
	tbl := table.New("Route", "URL", "Status", "Items", "Retained", "Discarded", "Duration", "Reason").WithWriter(w)

	for _, route := range components.Config.Routes {
		routeArrivals := components.Fetcher.FetchArrivals(ctx, route.RouteID, route.URLs, now, components.Config.MaxResults)

		log.Debug().
			Str("route", route.RouteID).
			Int("arrivals", len(routeArrivals.Arrivals)).
			Int("skipped", routeArrivals.SkippedSources()).
			Msg("Fetched route")

		for _, source := range routeArrivals.Sources {
			tbl.AddRow(
				route.RouteID,
				source.URL,
				source.Status,
				source.Items,
				source.Retained,
				source.DiscardedItems,
				source.Duration.Round(time.Millisecond),
				source.Reason,
			)
		}

		if dump {
			if _, err := pretty.Fprintf(w, "%# v\n", routeArrivals); err != nil {
				return err
			}
		}
	}

	tbl.Print()

	return nil
}
