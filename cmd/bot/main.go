package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	handler "github.com/daypulse/bot/internal/adapters/handler/http"
	"github.com/daypulse/bot/internal/adapters/repository/postgres"
	"github.com/daypulse/bot/internal/adapters/telegram"
	"github.com/daypulse/bot/internal/config"
	"github.com/daypulse/bot/internal/core/services"
	"github.com/daypulse/bot/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bot exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create bot api: %w", err)
	}

	pollRepo := postgres.NewPollRepository(db)
	userRepo := postgres.NewUserRepository(db)
	answerRepo := postgres.NewAnswerRepository(db)
	optionsRepo := postgres.NewCustomOptionsRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	channel := telegram.NewChannel(api)
	scheduleService := services.NewScheduleService(pollRepo, optionsRepo, channel, logger)

	bot := telegram.NewBot(api, telegram.Services{
		Subscriptions: services.NewSubscriptionService(userRepo, pollRepo, logger),
		Answers:       services.NewAnswerService(pollRepo, answerRepo, logger),
		Options:       services.NewOptionsService(optionsRepo, pollRepo, logger),
		Settings:      services.NewSettingsService(settingsRepo, pollRepo, logger),
		Stats:         services.NewStatsService(answerRepo, logger),
		Users:         userRepo,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The scheduler escalates an unreadable poll queue into a process
	// shutdown; everything drains through the same context.
	runCtx, shutdown := context.WithCancel(ctx)
	defer shutdown()

	ticker := scheduler.New(scheduleService, cfg.SchedulerInterval, shutdown, logger)

	server := &stdhttp.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewHandler(handler.NewHealthHandler(db), handler.NewStatsHandler(answerRepo)),
	}

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	g.Go(func() error {
		return ticker.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("ops server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
