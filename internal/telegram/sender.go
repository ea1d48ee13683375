// Package telegram sends admin alerts through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"modhub/backend/internal/logger"
)

// botAPI: частина *tgbotapi.BotAPI, яка потрібна відправнику.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender implements alerts.Sender for one admin chat.
type Sender struct {
	bot    botAPI
	chatID int64
}

// NewSender authorizes the bot token against the Telegram API.
func NewSender(token string, chatID int64) (*Sender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}
	bot.Debug = false
	logger.WithComponent("telegram").Info("authorized on account", "username", bot.Self.UserName)

	return &Sender{bot: bot, chatID: chatID}, nil
}

func (s *Sender) Name() string { return "telegram" }

// Send checks ctx only before the request; the bot client takes no context.
func (s *Sender) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, text))
	return err
}
