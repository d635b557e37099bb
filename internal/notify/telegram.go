package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nhle/cronograma/internal/model"
)

// TelegramSink pushes notifications to a Telegram chat.
type TelegramSink struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramSink authenticates the bot token and targets chatID.
func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	return newTelegramSink(token, chatID, tgbotapi.APIEndpoint)
}

func newTelegramSink(token string, chatID int64, endpoint string) (*TelegramSink, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram: chat id is not configured")
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram: connecting bot: %w", err)
	}
	return &TelegramSink{api: api, chatID: chatID}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

// Send posts the notification as an HTML message.
func (s *TelegramSink) Send(_ context.Context, n model.Notification) error {
	msg := tgbotapi.NewMessage(s.chatID, formatTelegram(n))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: sending message: %w", err)
	}
	return nil
}

func formatTelegram(n model.Notification) string {
	var b strings.Builder
	b.WriteString(typeIcon(n.Type))
	b.WriteString(" <b>")
	b.WriteString(html.EscapeString(n.Title))
	b.WriteString("</b>")
	if msg := strings.TrimSpace(n.Message); msg != "" {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(msg))
	}
	return b.String()
}

func typeIcon(t model.NotificationType) string {
	switch t {
	case model.NotificationSuccess:
		return "✅"
	case model.NotificationWarning:
		return "⚠️"
	case model.NotificationError:
		return "❌"
	default:
		return "🔔"
	}
}
