package playback

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ArtworkFetcher downloads album artwork and returns a resized thumbnail
// with its MIME type. Implemented by infra/artwork.
type ArtworkFetcher interface {
	Thumbnail(ctx context.Context, url string, size int) ([]byte, string, error)
}

// Handler handles playback and current-lyrics requests.
type Handler struct {
	service *Service
	artwork ArtworkFetcher
}

// NewHandler creates a new playback handler. artwork may be nil.
func NewHandler(service *Service, artwork ArtworkFetcher) *Handler {
	return &Handler{service: service, artwork: artwork}
}

// GetState returns the last raw player observation.
func (h *Handler) GetState(c *fiber.Ctx) error {
	state := h.service.LastState()
	if state == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no player state observed yet"})
	}
	return c.JSON(fiber.Map{
		"track":     state.Track,
		"isPlaying": state.IsPlaying,
		"position":  state.Position,
		"device":    state.Device,
	})
}

// GetCurrentLyrics returns the active sequence with the synchronized
// current/next indexes.
func (h *Handler) GetCurrentLyrics(c *fiber.Ctx) error {
	snap := h.service.Synchronizer().State()
	if snap.Track == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "nothing is playing"})
	}

	resp := fiber.Map{
		"track":        snap.Track,
		"isPlaying":    snap.IsPlaying,
		"position":     snap.Position,
		"provider":     snap.Provider,
		"lines":        snap.Lines,
		"currentIndex": snap.Current,
		"nextIndex":    snap.Next,
	}
	if snap.Current >= 0 && snap.Current < len(snap.Lines) {
		resp["currentLine"] = snap.Lines[snap.Current]
	}
	return c.JSON(resp)
}

// CopyCurrentLine returns the text of the current line, the placeholder
// marker rendered as an empty string.
func (h *Handler) CopyCurrentLine(c *fiber.Ctx) error {
	snap := h.service.Synchronizer().State()
	if snap.Current < 0 || snap.Current >= len(snap.Lines) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no current line"})
	}
	return c.SendString(snap.Lines[snap.Current].Text)
}

// GetArtwork serves a resized thumbnail of the current track's album cover.
func (h *Handler) GetArtwork(c *fiber.Ctx) error {
	if h.artwork == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "artwork disabled"})
	}
	track := h.service.CurrentTrack()
	if track == nil || track.Album.ArtworkURL == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no artwork for current track"})
	}

	size := 128
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 16 || parsed > 1024 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "size must be between 16 and 1024"})
		}
		size = parsed
	}

	data, mimeType, err := h.artwork.Thumbnail(c.Context(), track.Album.ArtworkURL, size)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "artwork fetch failed"})
	}
	c.Set(fiber.HeaderContentType, mimeType)
	return c.Send(data)
}
