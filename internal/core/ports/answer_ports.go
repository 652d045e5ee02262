package ports

import (
	"context"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
)

type AnswerRepository interface {
	// SaveAll persists all answers in a single transaction; either every row
	// lands or none. A nil or empty slice is a no-op.
	SaveAll(ctx context.Context, answers []*domain.PollAnswer) error

	// GetDayStats returns per-option answer counts for the given kind on the
	// given survey day.
	GetDayStats(ctx context.Context, kind domain.PollKind, day time.Time) ([]domain.PollStat, error)

	// GetUserStats returns the user's answered values for the given kind in
	// [since, until).
	GetUserStats(ctx context.Context, kind domain.PollKind, chatTgID int64, since, until time.Time) ([]domain.PollUserStat, error)
}

// AnsweredOption is one option of an inbound channel poll-state event.
type AnsweredOption struct {
	Text       string
	VoterCount int
}

// PollUpdate is an inbound "poll answered" event from the channel.
type PollUpdate struct {
	TgID    string
	Options []AnsweredOption
}

type AnswerService interface {
	// Ingest persists one answer row per option with a positive voter count
	// and returns the answered poll. Returns domain.ErrPollNotFound when the
	// update references an unknown poll.
	Ingest(ctx context.Context, update PollUpdate) (*domain.Poll, error)
}
