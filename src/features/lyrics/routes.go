package lyrics

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers lyrics routes.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")
	lyricsAPI := api.Group("/lyrics")

	lyricsAPI.Get("/:trackId", handler.GetBundle)
	lyricsAPI.Post("/provider/:provider", handler.SwitchProvider)
	lyricsAPI.Delete("/cache", handler.PurgeCache)
	lyricsAPI.Delete("/translations", handler.RemoveTranslations)
}
