package playback

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers playback routes.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	api.Get("/player/state", handler.GetState)
	api.Get("/lyrics/current", handler.GetCurrentLyrics)
	api.Get("/lyrics/current/line", handler.CopyCurrentLine)
	api.Get("/track/artwork", handler.GetArtwork)
}
