package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

// scheduleKinds are the kinds the send-time setup flow covers. FoodAllergy
// keeps its fixed slot.
var scheduleKinds = []domain.PollKind{domain.PollKindHowWasYourDay, domain.PollKindDailyEvents}

type settingsService struct {
	settings ports.SettingsRepository
	polls    ports.PollRepository
	logger   *slog.Logger
}

func NewSettingsService(settings ports.SettingsRepository, polls ports.PollRepository, logger *slog.Logger) ports.SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		settings: settings,
		polls:    polls,
		logger:   logger,
	}
}

func (s *settingsService) SetSendAt(ctx context.Context, userTgID int64, at domain.TimeOfDay) error {
	now := time.Now().UTC()

	for _, kind := range scheduleKinds {
		if _, err := s.settings.SetSendAt(ctx, userTgID, kind, at); err != nil {
			return fmt.Errorf("storing %s send time: %w", kind, err)
		}

		// Already-queued polls keep their date but move to the new slot;
		// a slot that already passed today rolls to tomorrow.
		scheduled, err := s.polls.GetScheduledForUser(ctx, userTgID, kind)
		if err != nil {
			return fmt.Errorf("reading scheduled %s polls: %w", kind, err)
		}
		for _, poll := range scheduled {
			target := at.On(poll.PublicationDate)
			if target.Before(now) {
				target = target.Add(24 * time.Hour)
			}
			if err := s.polls.UpdatePublicationDate(ctx, poll, target); err != nil {
				return fmt.Errorf("retargeting poll %d: %w", poll.ID, err)
			}
		}

		s.logger.InfoContext(ctx, "updated send time",
			"chat_tg_id", userTgID,
			"kind", kind.String(),
			"send_at_utc", at.String(),
			"retargeted", len(scheduled),
		)
	}

	return nil
}
