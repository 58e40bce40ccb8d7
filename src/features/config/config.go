package config

// Config holds the application configuration.
type Config struct {
	Telegram  Telegram  `yaml:"telegram"`
	Logger    Logger    `yaml:"logger"`
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Player    Player    `yaml:"player"`
	Lyrics    Lyrics    `yaml:"lyrics"`
	Translate Translate `yaml:"translate"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Telegram holds the configuration for the Telegram bot surface.
type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	NotifyChatID int64    `yaml:"notify_chat_id"`
	Notify       bool     `yaml:"notify"` // push fetch/translation failures
}

// Database holds the configuration for the lyrics cache store.
type Database struct {
	Path string `yaml:"path" validate:"required"`
	// LegacyCachePath points at the single-document JSON cache written by
	// earlier versions; migrated into the database once, then removed.
	LegacyCachePath string `yaml:"legacy_cache_path"`
}

// Player holds the configuration for the playback feed and synchronizer.
type Player struct {
	PollInterval  int     `yaml:"poll_interval_ms"`
	TickInterval  int     `yaml:"tick_interval_ms"`
	WindowSeconds float64 `yaml:"window_seconds"` // current-line look-ahead window
	SpotifyID     string  `yaml:"spotify_id"`
	SpotifySecret string  `yaml:"spotify_secret"`
	// SpotifyRefreshToken is the user's authorization-code refresh token;
	// the playback feed needs the user-read-playback-state scope.
	SpotifyRefreshToken string `yaml:"spotify_refresh_token"`
}

// Lyrics holds the configuration for lyric providers.
type Lyrics struct {
	DefaultProvider string                    `yaml:"default_provider"`
	RequestTimeout  int                       `yaml:"request_timeout_ms"`
	RatePerSecond   float64                   `yaml:"rate_per_second"`
	Providers       map[string]LyricsProvider `yaml:"providers"`
	LocalDir        string                    `yaml:"local_dir"` // directory of user .lrc overrides
}

// LyricsProvider holds configuration for an individual lyric provider.
type LyricsProvider struct {
	Enabled bool    `yaml:"enabled"`
	URL     string  `yaml:"url,omitempty"`
	Secret  *string `yaml:"secret,omitempty"`
}

// Translate holds the configuration for the translation/romanization adapter.
type Translate struct {
	TargetLanguage string `yaml:"target_language"`
	// Strategy is "batch" (one call for all distinct lines) or "per_line".
	Strategy        string `yaml:"strategy" validate:"omitempty,oneof=batch per_line"`
	URL             string `yaml:"url"`
	OfflineRomanize bool   `yaml:"offline_romanize_fallback"`
	MaxConcurrent   int    `yaml:"max_concurrent"`
}
