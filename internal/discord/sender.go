// Package discord posts admin alerts to a Discord channel.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

type channelMessenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sender implements alerts.Sender with a bot session.
type Sender struct {
	session   channelMessenger
	channelID string
}

// NewSender creates a REST-only session. No gateway connection is opened.
func NewSender(token, channelID string) (*Sender, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return &Sender{session: session, channelID: channelID}, nil
}

func (s *Sender) Name() string { return "discord" }

func (s *Sender) Send(ctx context.Context, text string) error {
	_, err := s.session.ChannelMessageSend(s.channelID, text, discordgo.WithContext(ctx))
	return err
}
