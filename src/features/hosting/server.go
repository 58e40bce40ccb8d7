package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/contre95/lyricsync/src/features/config"
	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/features/metrics"
	"github.com/contre95/lyricsync/src/features/playback"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server. artworkService and notifier may be nil.
func NewServer(cfg *config.Manager, playbackService *playback.Service, lyricsService *lyrics.Service, metricsService *metrics.Service, artworkService playback.ArtworkFetcher, notifier lyrics.Notifier, configPath string) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "Lyricsync",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	if notifier == nil {
		notifier = lyrics.NopNotifier{}
	}
	playbackHandler := playback.NewHandler(playbackService, artworkService)
	lyricsHandler := lyrics.NewHandler(lyricsService, playbackService, notifier)

	// The current-lyrics routes use static paths under /api/lyrics and must be
	// registered before the parameterized /api/lyrics/:trackId route.
	playback.RegisterRoutes(app, playbackHandler)
	lyrics.RegisterRoutes(app, lyricsHandler)
	config.RegisterRoutes(app, cfg, configPath)
	metrics.RegisterRoutes(app, metricsService)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
