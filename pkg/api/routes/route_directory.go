package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/transfers"
	"golang.org/x/exp/slices"
)

// RouteDirectory is the static configuration plus what is needed to query a
// single route live.
type RouteDirectory struct {
	Routes []ctdf.RouteEndpoint
	Pairs  []ctdf.RoutePairConfig

	Fetcher    transfers.ArrivalFetcher
	MaxResults int
	Clock      func() time.Time
}

func RoutesRouter(router fiber.Router, directory *RouteDirectory) {
	router.Get("/", func(c *fiber.Ctx) error {
		return listRoutes(c, directory)
	})
	router.Get("/:route/arrivals", func(c *fiber.Ctx) error {
		return getRouteArrivals(c, directory)
	})
}

func listRoutes(c *fiber.Ctx, directory *RouteDirectory) error {
	routesReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, directory.Routes)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce routes",
		})
	}

	pairsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, directory.Pairs)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce route pairs",
		})
	}

	return c.JSON(fiber.Map{
		"Routes": routesReduced,
		"Pairs":  pairsReduced,
	})
}

func getRouteArrivals(c *fiber.Ctx, directory *RouteDirectory) error {
	routeID := c.Params("route")

	routeIndex := slices.IndexFunc(directory.Routes, func(route ctdf.RouteEndpoint) bool {
		return route.RouteID == routeID
	})

	if routeIndex == -1 {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Route not found",
		})
	}

	now := time.Now()
	if directory.Clock != nil {
		now = directory.Clock()
	}

	endpoint := directory.Routes[routeIndex]
	routeArrivals := directory.Fetcher.FetchArrivals(c.UserContext(), routeID, endpoint.URLs, now, directory.MaxResults)

	groups := []string{"basic"}
	if c.Query("detailed") == "true" {
		groups = append(groups, "detailed")
	}

	arrivalsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, routeArrivals)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce route arrivals",
		})
	}

	return c.JSON(arrivalsReduced)
}
