package ports

import (
	"context"

	"github.com/daypulse/bot/internal/core/domain"
)

type UserRepository interface {
	// GetActiveByID returns the user when present and active,
	// domain.ErrUserNotFound otherwise.
	GetActiveByID(ctx context.Context, tgID int64) (*domain.User, error)

	// Activate upserts the user with active=true.
	Activate(ctx context.Context, tgID int64) (*domain.User, error)

	// Deactivate upserts the user with active=false. Cancelling the user's
	// pending polls is the caller's responsibility.
	Deactivate(ctx context.Context, tgID int64) (*domain.User, error)

	// CountAnsweredPolls counts distinct answered polls of the given kind.
	CountAnsweredPolls(ctx context.Context, tgID int64, kind domain.PollKind) (int64, error)
}

// SubscribeResult reports what Subscribe did.
type SubscribeResult struct {
	User          *domain.User
	AlreadyActive bool
	InitialPolls  []*domain.Poll
}

type SubscriptionService interface {
	// Subscribe activates the user and creates the initial poll per
	// subscribed kind, all due immediately. Subscribing an already active
	// user is a greeting no-op.
	Subscribe(ctx context.Context, chatTgID int64) (*SubscribeResult, error)

	// Unsubscribe deactivates the user and cancels all pending unpublished
	// polls across kinds. Published polls are untouched.
	Unsubscribe(ctx context.Context, chatTgID int64) (*domain.User, error)
}
