package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"exam_exchange/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram announces new listings in a chat or channel.
type Telegram struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// NewTelegram creates an announcer posting to chatID with the given bot token.
func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

// Announce posts the family summary.
func (t *Telegram) Announce(_ context.Context, view model.GeneralizedView, subjects []model.Subject, searchDates []time.Time) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatAnnouncement(view, subjects, searchDates))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}
	t.log.Debug("announced family", "chat_id", t.chatID, "token_prefix", view.Token.Prefix())
	return nil
}
