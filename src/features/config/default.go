package config

var defaultConfig = Config{
	Telegram: Telegram{
		Enabled:      false,
		Token:        "", // Can be obtained with https://t.me/BotFather
		AllowedUsers: []string{"<your_telegram_username>"},
		Notify:       true,
	},
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Server: Server{
		PrintRoutes: false,
		Port:        3636,
	},
	Database: Database{
		Path:            "./lyrics.db",
		LegacyCachePath: "./lyrics-cache.json",
	},
	Player: Player{
		PollInterval:  3000,
		TickInterval:  1000,
		WindowSeconds: 8,
	},
	Lyrics: Lyrics{
		DefaultProvider: "lrclib",
		RequestTimeout:  10000,
		RatePerSecond:   2,
		LocalDir:        "./lrc",
		Providers: map[string]LyricsProvider{
			"spotify": {
				Enabled: true,
				URL:     "https://spotify-lyrics-api-pi.vercel.app/",
			},
			"lrclib": {
				Enabled: true,
				URL:     "https://lrclib.net/api/get",
			},
			"musixmatch": {
				Enabled: false,
				URL:     "https://apic-desktop.musixmatch.com/ws/1.1/",
			},
			"local": {
				Enabled: true,
			},
		},
	},
	Translate: Translate{
		TargetLanguage:  "en",
		Strategy:        "batch",
		URL:             "https://translate.googleapis.com/translate_a/single",
		OfflineRomanize: true,
		MaxConcurrent:   4,
	},
}

func createDefaultConfig() *Config {
	cfg := defaultConfig
	return &cfg
}
