package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daypulse/bot/internal/core/ports"
)

// Services bundles everything the update dispatcher drives.
type Services struct {
	Subscriptions ports.SubscriptionService
	Answers       ports.AnswerService
	Options       ports.OptionsService
	Settings      ports.SettingsService
	Stats         ports.StatsService
	Users         ports.UserRepository
}

// Bot receives updates long-polling and dispatches them to the core services.
type Bot struct {
	api      *tgbotapi.BotAPI
	channel  ports.Channel
	services Services
	logger   *slog.Logger
}

func NewBot(api *tgbotapi.BotAPI, services Services, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:      api,
		channel:  NewChannel(api),
		services: services,
		logger:   logger,
	}
}

// Run blocks consuming updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	cfg.AllowedUpdates = []string{
		tgbotapi.UpdateTypeMessage,
		tgbotapi.UpdateTypePoll,
		tgbotapi.UpdateTypeCallbackQuery,
	}

	updates := b.api.GetUpdatesChan(cfg)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.logger.InfoContext(ctx, "bot update loop started", "username", b.api.Self.UserName)

	for update := range updates {
		b.dispatch(ctx, update)
	}
	return ctx.Err()
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Poll != nil:
		b.handlePollUpdate(ctx, update.Poll)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}
