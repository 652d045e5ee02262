package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

type channel struct {
	api *tgbotapi.BotAPI
}

// NewChannel wraps a bot API client as the engine's outbound transport.
func NewChannel(api *tgbotapi.BotAPI) ports.Channel {
	return &channel{
		api: api,
	}
}

func (c *channel) SendPoll(ctx context.Context, chatTgID int64, question string, options []string, allowsMultiple bool) ([]ports.SentPoll, error) {
	chunks := domain.ChunkOptions(options, domain.MaxPollOptions)

	sent := make([]ports.SentPoll, 0, len(chunks))
	for _, chunk := range chunks {
		cfg := tgbotapi.NewPoll(chatTgID, question, chunk...)
		cfg.IsAnonymous = false
		cfg.AllowsMultipleAnswers = allowsMultiple

		msg, err := c.api.Send(cfg)
		if err != nil {
			return sent, fmt.Errorf("failed to send poll to chat %d: %w", chatTgID, err)
		}
		if msg.Poll == nil {
			return sent, fmt.Errorf("chat %d: %w", chatTgID, domain.ErrChannelProtocol)
		}

		sent = append(sent, ports.SentPoll{
			TgID:        msg.Poll.ID,
			TgMessageID: msg.MessageID,
		})
	}

	return sent, nil
}

func (c *channel) SendMessage(ctx context.Context, chatTgID int64, text string) error {
	msg := tgbotapi.NewMessage(chatTgID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatTgID, err)
	}
	return nil
}

func (c *channel) DeleteMessage(ctx context.Context, chatTgID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatTgID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatTgID, err)
	}
	return nil
}
