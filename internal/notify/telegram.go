// Package notify delivers outbound messages to users' Telegram chats.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram sends HTML-formatted messages through the Bot API. It only
// pushes; inbound updates are not consumed.
type Telegram struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegram connects to the Bot API with the given token. An empty token
// returns nil, nil: the channel is simply not configured.
func NewTelegram(token string, logger *zap.Logger) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	logger.Info("telegram notifications enabled", zap.String("bot", api.Self.UserName))
	return &Telegram{api: api, logger: logger}, nil
}

// SendText delivers an HTML message to the chat.
func (t *Telegram) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
