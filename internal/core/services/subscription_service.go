package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

type subscriptionService struct {
	users  ports.UserRepository
	polls  ports.PollRepository
	logger *slog.Logger
}

func NewSubscriptionService(users ports.UserRepository, polls ports.PollRepository, logger *slog.Logger) ports.SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &subscriptionService{
		users:  users,
		polls:  polls,
		logger: logger,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, chatTgID int64) (*ports.SubscribeResult, error) {
	existing, err := s.users.GetActiveByID(ctx, chatTgID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("checking user state: %w", err)
	}
	if existing != nil {
		s.logger.InfoContext(ctx, "user already active", "chat_tg_id", chatTgID)
		return &ports.SubscribeResult{User: existing, AlreadyActive: true}, nil
	}

	user, err := s.users.Activate(ctx, chatTgID)
	if err != nil {
		return nil, fmt.Errorf("activating user: %w", err)
	}

	// Initial polls are dated now, so the next scheduler tick publishes them.
	polls, err := s.polls.CreateInitialForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("creating initial polls: %w", err)
	}

	s.logger.InfoContext(ctx, "activated user",
		"chat_tg_id", chatTgID,
		"initial_polls", len(polls),
	)

	return &ports.SubscribeResult{User: user, InitialPolls: polls}, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, chatTgID int64) (*domain.User, error) {
	user, err := s.users.Deactivate(ctx, chatTgID)
	if err != nil {
		return nil, fmt.Errorf("deactivating user: %w", err)
	}

	for _, kind := range domain.AllPollKinds() {
		cancelled, err := s.polls.DisablePendingForUser(ctx, chatTgID, kind)
		if err != nil {
			return nil, fmt.Errorf("cancelling pending %s polls: %w", kind, err)
		}
		if cancelled > 0 {
			s.logger.InfoContext(ctx, "cancelled pending polls",
				"chat_tg_id", chatTgID,
				"kind", kind.String(),
				"count", cancelled,
			)
		}
	}

	return user, nil
}
