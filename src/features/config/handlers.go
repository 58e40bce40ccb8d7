package config

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
	path          string
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager, path string) *Handler {
	return &Handler{
		configManager: configManager,
		path:          path,
	}
}

// GetConfig returns the current configuration with secrets redacted.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	return c.JSON(h.configManager.redactedCfg())
}

// GetJSON returns the redacted configuration as a JSON string for logging.
func (m *Manager) GetJSON() string {
	data, err := json.Marshal(m.redactedCfg())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// UpdateSettings updates the user-tunable lyric settings and persists them.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	slog.Info("Configuration update requested")

	current := h.configManager.Get()
	updated := *current

	if v := c.FormValue("lyrics.default_provider"); v != "" {
		updated.Lyrics.DefaultProvider = v
	}
	if v := c.FormValue("translate.target_language"); v != "" {
		updated.Translate.TargetLanguage = v
	}
	if v := c.FormValue("translate.strategy"); v != "" {
		if v != "batch" && v != "per_line" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "strategy must be batch or per_line",
			})
		}
		updated.Translate.Strategy = v
	}
	if v := c.FormValue("player.window_seconds"); v != "" {
		window, err := strconv.ParseFloat(v, 64)
		if err != nil || window <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "window_seconds must be a positive number",
			})
		}
		updated.Player.WindowSeconds = window
	}

	h.configManager.Update(&updated)
	if err := h.configManager.Save(h.path); err != nil {
		slog.Error("Failed to save configuration", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save configuration",
		})
	}

	return c.JSON(fiber.Map{"status": "updated"})
}
