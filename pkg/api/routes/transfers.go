package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/cachedresults"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/etafeed"
	"github.com/travigo/transferboard/pkg/refresh"
	"github.com/travigo/transferboard/pkg/render"
	"github.com/travigo/transferboard/pkg/transfers"
)

type transfersResponse struct {
	Counter     int       `groups:"basic"`
	LastUpdated time.Time `groups:"basic"`
	Message     string    `groups:"basic"`

	Rows []ctdf.ComparisonRow `groups:"basic"`

	GeneratedAt time.Time                         `groups:"detailed"`
	Sources     map[string][]etafeed.SourceResult `groups:"detailed"`
}

// TransfersRouter serves the latest published transfer table from store.
func TransfersRouter(router fiber.Router, store cachedresults.Store) {
	router.Get("/transfers", func(c *fiber.Ctx) error {
		return getTransfers(c, store)
	})
	router.Get("/transfers.csv", func(c *fiber.Ctx) error {
		return getTransfersCSV(c, store)
	})
}

func getTransfers(c *fiber.Ctx, store cachedresults.Store) error {
	state, ok, err := latestState(c, store)
	if !ok {
		return err
	}

	response := transfersResponse{
		Counter:     state.Counter,
		LastUpdated: state.LastUpdated,
		Rows:        state.Rows(),
	}
	if state.Table.Empty() {
		response.Message = transfers.EmptyStateMessage
	}
	if state.Table != nil {
		response.GeneratedAt = state.Table.GeneratedAt
		response.Sources = state.Table.Sources
	}

	groups := []string{"basic"}
	if c.Query("detailed") == "true" {
		groups = append(groups, "detailed")
	}

	responseReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, response)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce transfer table",
		})
	}

	return c.JSON(responseReduced)
}

func getTransfersCSV(c *fiber.Ctx, store cachedresults.Store) error {
	state, ok, err := latestState(c, store)
	if !ok {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")

	return render.CSV(c, state.Rows())
}

// latestState writes the error response itself when ok is false.
func latestState(c *fiber.Ctx, store cachedresults.Store) (refresh.State, bool, error) {
	state, err := store.Latest(c.UserContext())

	if errors.Is(err, cachedresults.ErrNoSnapshot) {
		c.SendStatus(fiber.StatusNotFound)
		return state, false, c.JSON(fiber.Map{
			"error": "Transfer table has not been built yet",
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to read cached transfer table")

		c.SendStatus(fiber.StatusInternalServerError)
		return state, false, c.JSON(fiber.Map{
			"error": "Could not read transfer table",
		})
	}

	return state, true, nil
}
