package lyrics

import (
	"errors"
	"log/slog"

	"github.com/contre95/lyricsync/src/music"
	"github.com/gofiber/fiber/v2"
)

// TrackSource exposes the track the player is currently on. Implemented by
// the playback feature.
type TrackSource interface {
	CurrentTrack() *music.Track
}

// Handler handles lyrics requests.
type Handler struct {
	service  *Service
	tracks   TrackSource
	notifier Notifier
}

// NewHandler creates a new lyrics handler.
func NewHandler(service *Service, tracks TrackSource, notifier Notifier) *Handler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Handler{service: service, tracks: tracks, notifier: notifier}
}

// GetBundle returns the cached bundle for a track in JSON.
func (h *Handler) GetBundle(c *fiber.Ctx) error {
	trackID := c.Params("trackId")
	if trackID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "track ID is required"})
	}
	bundle, err := h.service.Cached(c.Context(), trackID)
	if err != nil {
		slog.Error("Failed to read lyrics bundle", "trackId", trackID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read lyrics cache"})
	}
	if bundle == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no cached lyrics for track"})
	}
	return c.JSON(bundle)
}

// SwitchProvider resolves the current track against the requested provider.
func (h *Handler) SwitchProvider(c *fiber.Ctx) error {
	desired, err := music.ParseProvider(c.Params("provider"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	track := h.tracks.CurrentTrack()
	if track == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "nothing is playing"})
	}

	bundle, err := h.service.Resolve(c.Context(), track, desired)
	switch {
	case err == nil:
		return c.JSON(bundle)
	case errors.Is(err, ErrNothingToTranslate):
		h.notifier.Notify("No lyrics", "No lyrics to translate or romanize")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		h.notifier.Notify("No lyrics", "No "+string(desired)+" lyrics for "+track.Title)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.Error("Provider switch failed", "trackId", track.ID, "provider", desired, "error", err)
		h.notifier.Notify("Lyrics fetch failed", "Failed to fetch "+string(desired)+" lyrics")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
}

// PurgeCache clears both the persistent and the negative cache.
func (h *Handler) PurgeCache(c *fiber.Ctx) error {
	if err := h.service.PurgeCache(c.Context()); err != nil {
		slog.Error("Failed to purge lyrics cache", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to purge cache"})
	}
	return c.JSON(fiber.Map{"status": "purged"})
}

// RemoveTranslations strips derived variants from every cached bundle.
func (h *Handler) RemoveTranslations(c *fiber.Ctx) error {
	if err := h.service.RemoveTranslations(c.Context()); err != nil {
		slog.Error("Failed to remove translations", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove translations"})
	}
	return c.JSON(fiber.Map{"status": "removed"})
}
