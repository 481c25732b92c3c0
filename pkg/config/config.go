package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/util"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed default.yml
var defaultConfig []byte

var (
	ErrUnknownRoute   = errors.New("pair references a route that is not configured")
	ErrDuplicateRoute = errors.New("route configured more than once")
)

// Config is the static setup of the board: which feeds to poll per route and
// which route pairs to compare.
type Config struct {
	RefreshInterval string `yaml:"refreshInterval" validate:"required"`
	RequestTimeout  string `yaml:"requestTimeout" validate:"required"`
	MaxResults      int    `yaml:"maxResults" validate:"gt=0"`
	MarginalRule    string `yaml:"marginalRule"`

	Routes []ctdf.RouteEndpoint   `yaml:"routes" validate:"required,min=1,dive"`
	Pairs  []ctdf.RoutePairConfig `yaml:"pairs" validate:"required,min=1,dive"`

	refreshInterval time.Duration
	requestTimeout  time.Duration
}

// Load reads path, or the embedded default configuration when path is empty,
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data := defaultConfig

	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		data = fileData
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("routes", len(cfg.Routes)).
		Int("pairs", len(cfg.Pairs)).
		Str("refresh", cfg.refreshInterval.String()).
		Msg("Loaded configuration")

	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	env := util.GetEnvironmentVariables()
	if env["TRANSFERBOARD_REFRESH_INTERVAL"] != "" {
		cfg.RefreshInterval = env["TRANSFERBOARD_REFRESH_INTERVAL"]
	}
	cfg.MaxResults = util.GetEnvironmentInt(env, "TRANSFERBOARD_MAX_RESULTS", cfg.MaxResults)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	var err error
	if c.refreshInterval, err = util.ParseISODuration(c.RefreshInterval); err != nil {
		return fmt.Errorf("refreshInterval: %w", err)
	}
	if c.requestTimeout, err = util.ParseISODuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("requestTimeout: %w", err)
	}
	if c.refreshInterval <= 0 || c.requestTimeout <= 0 {
		return errors.New("refreshInterval and requestTimeout must be positive")
	}

	routes := map[string]bool{}
	for _, route := range c.Routes {
		if routes[route.RouteID] {
			return fmt.Errorf("%w: %q", ErrDuplicateRoute, route.RouteID)
		}
		routes[route.RouteID] = true
	}

	for i, pair := range c.Pairs {
		for _, routeID := range pair.RouteIDs() {
			if !routes[routeID] {
				return fmt.Errorf("%w: pair %d references %q", ErrUnknownRoute, i, routeID)
			}
		}
	}

	return nil
}

func (c *Config) RefreshEvery() time.Duration {
	return c.refreshInterval
}

func (c *Config) Timeout() time.Duration {
	return c.requestTimeout
}

func (c *Config) EndpointsByRoute() map[string]ctdf.RouteEndpoint {
	endpointsByRoute := make(map[string]ctdf.RouteEndpoint, len(c.Routes))
	for _, route := range c.Routes {
		endpointsByRoute[route.RouteID] = route
	}

	return endpointsByRoute
}

func (c *Config) RoutePairs() []ctdf.RoutePairConfig {
	return slices.Clone(c.Pairs)
}
