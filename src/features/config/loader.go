package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// setProviderSecret sets the secret for a lyrics provider from an environment variable
func setProviderSecret(cfg *Config, providerName, envVar string) {
	if key := os.Getenv(envVar); key != "" {
		if cfg.Lyrics.Providers == nil {
			cfg.Lyrics.Providers = make(map[string]LyricsProvider)
		}
		if provider, exists := cfg.Lyrics.Providers[providerName]; exists {
			provider.Secret = &key
			cfg.Lyrics.Providers[providerName] = provider
		} else {
			cfg.Lyrics.Providers[providerName] = LyricsProvider{Enabled: false, Secret: &key}
		}
	}
}

// Load reads a YAML file from the given path and returns a new ConfigManager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		defaultCfg := createDefaultConfig()

		manager := NewManager(defaultCfg)
		if err := manager.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		slog.Info("Default configuration created successfully", "path", path)
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyDefaults(&cfg)

	// Override with environment variables if set
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if id := os.Getenv("SPOTIFY_ID"); id != "" {
		cfg.Player.SpotifyID = id
	}
	if secret := os.Getenv("SPOTIFY_SECRET"); secret != "" {
		cfg.Player.SpotifySecret = secret
	}
	if token := os.Getenv("SPOTIFY_REFRESH_TOKEN"); token != "" {
		cfg.Player.SpotifyRefreshToken = token
	}
	setProviderSecret(&cfg, "musixmatch", "MUSIXMATCH_USER_TOKEN")

	manager := NewManager(&cfg)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}

	return manager, nil
}

// applyDefaults fills in values the yaml file may omit.
func applyDefaults(cfg *Config) {
	if cfg.Player.PollInterval == 0 {
		cfg.Player.PollInterval = defaultConfig.Player.PollInterval
	}
	if cfg.Player.TickInterval == 0 {
		cfg.Player.TickInterval = defaultConfig.Player.TickInterval
	}
	if cfg.Player.WindowSeconds == 0 {
		cfg.Player.WindowSeconds = defaultConfig.Player.WindowSeconds
	}
	if cfg.Lyrics.DefaultProvider == "" {
		cfg.Lyrics.DefaultProvider = defaultConfig.Lyrics.DefaultProvider
	}
	if cfg.Lyrics.RequestTimeout == 0 {
		cfg.Lyrics.RequestTimeout = defaultConfig.Lyrics.RequestTimeout
	}
	if cfg.Lyrics.RatePerSecond == 0 {
		cfg.Lyrics.RatePerSecond = defaultConfig.Lyrics.RatePerSecond
	}
	if cfg.Translate.TargetLanguage == "" {
		cfg.Translate.TargetLanguage = defaultConfig.Translate.TargetLanguage
	}
	if cfg.Translate.Strategy == "" {
		cfg.Translate.Strategy = defaultConfig.Translate.Strategy
	}
	if cfg.Translate.URL == "" {
		cfg.Translate.URL = defaultConfig.Translate.URL
	}
	if cfg.Translate.MaxConcurrent == 0 {
		cfg.Translate.MaxConcurrent = defaultConfig.Translate.MaxConcurrent
	}
}
