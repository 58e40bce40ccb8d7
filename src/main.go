package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/contre95/lyricsync/src/features/config"
	"github.com/contre95/lyricsync/src/features/hosting"
	"github.com/contre95/lyricsync/src/features/logging"
	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/features/metrics"
	"github.com/contre95/lyricsync/src/features/playback"
	"github.com/contre95/lyricsync/src/features/translating"
	"github.com/contre95/lyricsync/src/infra/artwork"
	"github.com/contre95/lyricsync/src/infra/database"
	"github.com/contre95/lyricsync/src/infra/providers"
	"github.com/contre95/lyricsync/src/infra/spotify"
	"github.com/contre95/lyricsync/src/infra/translate"
)

const configPath = "config.yaml"

func main() {
	// Load configuration
	cfgManager, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	cfg := cfgManager.Get()

	metricsService := metrics.NewService()

	// Create the lyrics cache store
	store, err := database.NewSqliteStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to create lyrics store: %v", err)
	}
	defer store.Close()
	if err := store.MigrateLegacyCache(context.Background(), cfg.Database.LegacyCachePath); err != nil {
		slog.Warn("Legacy cache migration failed", "error", err)
	}

	// Shared rate-limited HTTP client for the lyric and translation endpoints
	client := providers.NewClient(time.Duration(cfg.Lyrics.RequestTimeout)*time.Millisecond, cfg.Lyrics.RatePerSecond)

	providerCfg := func(name string) config.LyricsProvider {
		return cfg.Lyrics.Providers[name]
	}
	mxmToken := providers.DefaultMusixmatchUserToken
	if secret := providerCfg("musixmatch").Secret; secret != nil && *secret != "" {
		mxmToken = *secret
	}

	localProvider := providers.NewLocalProvider(cfg.Lyrics.LocalDir, providerCfg("local").Enabled)
	if err := localProvider.Start(); err != nil {
		slog.Warn("Local lyrics watcher failed to start", "error", err)
	}
	defer localProvider.Stop()

	musixmatchProvider := providers.NewMusixmatchProvider(providerCfg("musixmatch").URL, mxmToken, providerCfg("musixmatch").Enabled, client)
	lyricProviders := []lyrics.Provider{
		localProvider,
		providers.NewSpotifyLyricsProvider(providerCfg("spotify").URL, providerCfg("spotify").Enabled, client),
		providers.NewLrclibProvider(providerCfg("lrclib").URL, providerCfg("lrclib").Enabled, client),
		musixmatchProvider,
	}

	// Create the translation adapter
	engine := translate.NewEngine(cfg.Translate.URL, client)
	translatingService := translating.NewService(engine, musixmatchProvider, cfgManager)

	// Create the lyrics service
	lyricsService := lyrics.NewService(store, lyricProviders, translatingService, cfgManager, metricsService)

	// Create the playback service against the Spotify player
	playerSource, err := spotify.NewPlayerSource(context.Background(), cfg.Player.SpotifyID, cfg.Player.SpotifySecret, cfg.Player.SpotifyRefreshToken)
	if err != nil {
		log.Fatalf("failed to create spotify player source: %v", err)
	}
	playbackService := playback.NewService(playerSource, lyricsService, cfgManager, metricsService)
	lyricsService.SetListener(playbackService)
	playbackService.Start()
	defer playbackService.Stop()

	artworkService := artwork.NewService()

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	var notifier lyrics.Notifier
	if cfg.Telegram.Enabled {
		telegramBot, err = hosting.NewTelegramBot(cfgManager, lyricsService, playbackService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			notifier = telegramBot
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, playbackService, lyricsService, metricsService, artworkService, notifier, configPath)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfg.Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
