package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/transferboard/pkg/api/routes"
	"github.com/travigo/transferboard/pkg/cachedresults"
)

func NewApp(store cachedresults.Store, directory *routes.RouteDirectory) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.TransfersRouter(group, store)
	routes.RoutesRouter(group.Group("/routes"), directory)

	return webApp
}
