package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

// optionsService drives the DailyEvents option selection flow. The catalogue
// is fixed; the user toggles entries on an inline keyboard and Complete wires
// the selection into the scheduling state.
type optionsService struct {
	options ports.CustomOptionsRepository
	polls   ports.PollRepository
	logger  *slog.Logger
}

func NewOptionsService(options ports.CustomOptionsRepository, polls ports.PollRepository, logger *slog.Logger) ports.OptionsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &optionsService{
		options: options,
		polls:   polls,
		logger:  logger,
	}
}

const optionsKind = domain.PollKindDailyEvents

func (s *optionsService) GetSelection(ctx context.Context, userTgID int64) (*domain.PollCustomOptions, error) {
	return s.options.GetForUser(ctx, userTgID, optionsKind)
}

func (s *optionsService) Toggle(ctx context.Context, userTgID int64, option string) (*domain.PollCustomOptions, error) {
	if !knownOption(option) {
		return nil, fmt.Errorf("option %q is not in the catalogue", option)
	}
	if err := s.options.Toggle(ctx, userTgID, optionsKind, option); err != nil {
		return nil, fmt.Errorf("toggling option: %w", err)
	}
	return s.options.GetForUser(ctx, userTgID, optionsKind)
}

func (s *optionsService) EnableAll(ctx context.Context, userTgID int64) (*domain.PollCustomOptions, error) {
	current, err := s.options.GetForUser(ctx, userTgID, optionsKind)
	if err != nil {
		return nil, err
	}

	for _, option := range domain.DailyEventsCatalogue {
		if current.Enabled(option) {
			continue
		}
		if err := s.options.Toggle(ctx, userTgID, optionsKind, option); err != nil {
			return nil, fmt.Errorf("enabling option: %w", err)
		}
	}

	return s.options.GetForUser(ctx, userTgID, optionsKind)
}

func (s *optionsService) DisableAll(ctx context.Context, userTgID int64) (*domain.PollCustomOptions, error) {
	if err := s.options.Clear(ctx, userTgID, optionsKind); err != nil {
		return nil, fmt.Errorf("clearing options: %w", err)
	}
	return s.options.GetForUser(ctx, userTgID, optionsKind)
}

func (s *optionsService) Complete(ctx context.Context, userTgID int64) (ports.SelectionOutcome, error) {
	selection, err := s.options.GetForUser(ctx, userTgID, optionsKind)
	if err != nil {
		return 0, err
	}

	if len(selection.Options) == 0 {
		cancelled, err := s.polls.DisablePendingForUser(ctx, userTgID, optionsKind)
		if err != nil {
			return 0, fmt.Errorf("cancelling daily events polls: %w", err)
		}
		s.logger.InfoContext(ctx, "empty selection, daily events disabled",
			"chat_tg_id", userTgID,
			"cancelled", cancelled,
		)
		return ports.SelectionDisabled, nil
	}

	scheduled, err := s.polls.GetScheduledForUser(ctx, userTgID, optionsKind)
	if err != nil {
		return 0, fmt.Errorf("checking scheduled polls: %w", err)
	}
	if len(scheduled) > 0 {
		return ports.SelectionAlreadyQueued, nil
	}

	// No poll queued yet: create one due immediately so the next tick sends it.
	if _, err := s.polls.Create(ctx, userTgID, optionsKind, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("queueing daily events poll: %w", err)
	}
	return ports.SelectionQueued, nil
}

func knownOption(option string) bool {
	for _, o := range domain.DailyEventsCatalogue {
		if o == option {
			return true
		}
	}
	return false
}
