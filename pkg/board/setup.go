package board

import (
	"github.com/travigo/transferboard/pkg/config"
	"github.com/travigo/transferboard/pkg/etafeed"
	"github.com/travigo/transferboard/pkg/refresh"
	"github.com/travigo/transferboard/pkg/render"
	"github.com/travigo/transferboard/pkg/transfers"
	"github.com/urfave/cli/v2"
)

// ConfigFlag is shared by every command that loads the route configuration.
var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "path to the routes and pairs YAML file (embedded Hong Kong defaults when unset)",
	EnvVars: []string{"TRANSFERBOARD_CONFIG"},
}

// Components is everything built from the configuration file.
type Components struct {
	Config  *config.Config
	Fetcher *etafeed.Fetcher
	Matcher *transfers.Matcher
	Rule    *render.MarginalRule
}

func Setup(path string) (*Components, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	rule, err := render.CompileMarginalRule(cfg.MarginalRule)
	if err != nil {
		return nil, err
	}

	fetcher := etafeed.NewFetcher(cfg.Timeout())

	matcher := transfers.NewMatcher(fetcher)
	matcher.MaxResults = cfg.MaxResults

	return &Components{
		Config:  cfg,
		Fetcher: fetcher,
		Matcher: matcher,
		Rule:    rule,
	}, nil
}

func (c *Components) Scheduler(publishers ...refresh.Publisher) *refresh.Scheduler {
	return &refresh.Scheduler{
		Builder:    c.Matcher,
		Pairs:      c.Config.RoutePairs(),
		Endpoints:  c.Config.EndpointsByRoute(),
		Interval:   c.Config.RefreshEvery(),
		Publishers: publishers,
	}
}
