package playback

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the playback feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the playback feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes playback-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "line":
		return h.handleLine(bot, chatID)
	case "status":
		return h.handleStatus(bot, chatID)
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown playback command. Use /line or /status"))
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"line":   "Show the current lyric line",
		"status": "Show what is playing and which provider is active",
	}
}

// HandleCallback handles callback queries for this feature (playback has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

func (h *TelegramHandler) handleLine(bot *tgbotapi.BotAPI, chatID int64) error {
	snap := h.service.Synchronizer().State()
	if snap.Current < 0 || snap.Current >= len(snap.Lines) {
		bot.Send(tgbotapi.NewMessage(chatID, "🎵 No current line"))
		return nil
	}
	line := snap.Lines[snap.Current]
	if !line.HasText() {
		bot.Send(tgbotapi.NewMessage(chatID, "🎵 ♪"))
		return nil
	}
	bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("🎵 `[%s]` %s", line.LrcTime, line.Text)))
	return nil
}

func (h *TelegramHandler) handleStatus(bot *tgbotapi.BotAPI, chatID int64) error {
	snap := h.service.Synchronizer().State()
	if snap.Track == nil {
		bot.Send(tgbotapi.NewMessage(chatID, "⏹ Nothing is playing"))
		return nil
	}

	state := "⏸ Paused"
	if snap.IsPlaying {
		state = "▶️ Playing"
	}
	message := fmt.Sprintf("%s *%s* — %s\n"+
		"Provider: `%s`\n"+
		"Position: `%02d:%02d`\n"+
		"Lines: `%d`",
		state, snap.Track.Title, snap.Track.MainArtist(),
		snap.Provider,
		snap.Position/60000, (snap.Position/1000)%60,
		len(snap.Lines))

	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}
