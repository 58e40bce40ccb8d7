package lyrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/contre95/lyricsync/src/music"
)

// TelegramHandler handles Telegram commands for the lyrics feature
type TelegramHandler struct {
	service *Service
	tracks  TrackSource
}

// NewTelegramHandler creates a new Telegram handler for the lyrics feature
func NewTelegramHandler(service *Service, tracks TrackSource) *TelegramHandler {
	return &TelegramHandler{service: service, tracks: tracks}
}

// HandleCommand processes lyrics-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "provider":
		return h.handleProvider(bot, chatID, args)
	case "purge":
		return h.handlePurge(bot, chatID)
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown lyrics command. Use /provider <name> or /purge"))
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"provider": "Switch lyrics provider (/provider spotify|lrclib|musixmatch|local|translated|romanized)",
		"purge":    "Purge the lyrics cache",
	}
}

// HandleCallback handles callback queries for this feature (lyrics has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

func (h *TelegramHandler) handleProvider(bot *tgbotapi.BotAPI, chatID int64, args string) error {
	if args == "" {
		bot.Send(tgbotapi.NewMessage(chatID, "Usage: /provider spotify|lrclib|musixmatch|local|translated|romanized"))
		return nil
	}
	desired, err := music.ParseProvider(args)
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ Unknown provider %q", args)))
		return nil
	}

	track := h.tracks.CurrentTrack()
	if track == nil {
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Nothing is playing"))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = h.service.Resolve(ctx, track, desired)
	switch {
	case err == nil:
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Provider switched to *%s* for %s", desired, track.Title)))
		return nil
	case errors.Is(err, ErrNothingToTranslate):
		bot.Send(tgbotapi.NewMessage(chatID, "❌ No lyrics to translate for this track"))
		return nil
	case errors.Is(err, ErrNotFound):
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ No lyrics found on %s", desired)))
		return nil
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Lyrics fetch failed"))
		return err
	}
}

func (h *TelegramHandler) handlePurge(bot *tgbotapi.BotAPI, chatID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.service.PurgeCache(ctx); err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Failed to purge the lyrics cache"))
		return err
	}
	bot.Send(tgbotapi.NewMessage(chatID, "🗑 Lyrics cache purged"))
	return nil
}
