package ports

import (
	"context"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
)

// PollRepository is the persistence surface the scheduling engine requires.
// Implementations run each mutating operation inside its own short-lived
// transaction so external channel calls never hold one open.
type PollRepository interface {
	// Create inserts a new unpublished poll due at the given moment.
	Create(ctx context.Context, chatTgID int64, kind domain.PollKind, at time.Time) (*domain.Poll, error)

	// CreateInitialForUser inserts one poll per subscribed kind for a freshly
	// activated user, all due immediately.
	CreateInitialForUser(ctx context.Context, user *domain.User) ([]*domain.Poll, error)

	// ExistsUnpublishedAfter reports whether the user already has an
	// unpublished poll of this kind dated after the given moment.
	ExistsUnpublishedAfter(ctx context.Context, chatTgID int64, kind domain.PollKind, after time.Time) (bool, error)

	// ScheduleNext computes the next occurrence of the given published poll
	// (consulting the user's schedule override) and inserts it. When an
	// unpublished future poll of the same kind already exists the insert is
	// skipped and created is false; this is the sole dedup mechanism, not a
	// database constraint.
	ScheduleNext(ctx context.Context, poll *domain.Poll) (next *domain.Poll, created bool, err error)

	// MarkPublished sets published=true and the channel identifiers on an
	// already-inserted poll. Returns domain.ErrNotPersisted when the poll has
	// no storage id.
	MarkPublished(ctx context.Context, poll *domain.Poll, tgID string, tgMessageID int) (*domain.Poll, error)

	// CreatePublished inserts an additional already-published row sharing the
	// original poll's owner, kind and publication date. Used for the 2nd..nth
	// chunk of a chunked publication so each chunk matches answers on its own.
	CreatePublished(ctx context.Context, poll *domain.Poll, tgID string, tgMessageID int) (*domain.Poll, error)

	// GetPending returns unpublished polls of active users whose publication
	// date has passed, ordered by (chat, kind) for reproducible delivery.
	GetPending(ctx context.Context, now time.Time) ([]*domain.Poll, error)

	// GetOverdue returns published, not yet overdue polls of the given kind
	// past the kind's overdue interval with no recorded answer.
	GetOverdue(ctx context.Context, kind domain.PollKind, now time.Time) ([]*domain.Poll, error)

	// GetScheduledForUser returns the user's future unpublished polls of the
	// given kind.
	GetScheduledForUser(ctx context.Context, chatTgID int64, kind domain.PollKind) ([]*domain.Poll, error)

	// UpdatePublicationDate retargets an unpublished poll to a new due moment.
	UpdatePublicationDate(ctx context.Context, poll *domain.Poll, at time.Time) error

	// DisablePendingForUser deletes the user's unpublished future polls of the
	// given kind, returning how many were removed.
	DisablePendingForUser(ctx context.Context, chatTgID int64, kind domain.PollKind) (int64, error)

	// Cancel deletes one unpublished poll by id, regardless of its due date.
	// Published polls are never deleted.
	Cancel(ctx context.Context, poll *domain.Poll) error

	// SetOverdue flips the overdue flag, returning the number of rows
	// affected. Zero means the poll vanished concurrently; callers log and
	// continue.
	SetOverdue(ctx context.Context, poll *domain.Poll) (int64, error)

	// GetByTgID looks a poll up by its channel-assigned id. Returns
	// domain.ErrPollNotFound when unknown.
	GetByTgID(ctx context.Context, tgID string) (*domain.Poll, error)
}

// ScheduleService is the poll scheduling and publication state machine.
type ScheduleService interface {
	// PublishDue publishes every due poll, isolating per-poll failures. A
	// non-nil error means the due set itself could not be read.
	PublishDue(ctx context.Context, now time.Time) error

	// SweepOverdue marks unanswered published polls past their kind's
	// threshold as overdue, best-effort deleting the channel message. A
	// non-nil error means an overdue set could not be read.
	SweepOverdue(ctx context.Context, now time.Time) error
}
