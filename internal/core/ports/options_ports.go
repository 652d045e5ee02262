package ports

import (
	"context"

	"github.com/daypulse/bot/internal/core/domain"
)

type CustomOptionsRepository interface {
	// GetForUser returns the user's enabled option set for the kind. The set
	// may be empty, never nil.
	GetForUser(ctx context.Context, userTgID int64, kind domain.PollKind) (*domain.PollCustomOptions, error)

	// Toggle adds the option when absent and removes it when present.
	Toggle(ctx context.Context, userTgID int64, kind domain.PollKind, option string) error

	// Clear removes every enabled option for the (user, kind) pair.
	Clear(ctx context.Context, userTgID int64, kind domain.PollKind) error
}

// SelectionOutcome reports what completing the options flow did.
type SelectionOutcome int

const (
	// SelectionQueued means a DailyEvents poll is (now) queued for the user.
	SelectionQueued SelectionOutcome = iota
	// SelectionAlreadyQueued means a future poll already existed, nothing added.
	SelectionAlreadyQueued
	// SelectionDisabled means the selection was empty and pending DailyEvents
	// polls were cancelled.
	SelectionDisabled
)

type OptionsService interface {
	GetSelection(ctx context.Context, userTgID int64) (*domain.PollCustomOptions, error)
	Toggle(ctx context.Context, userTgID int64, option string) (*domain.PollCustomOptions, error)
	EnableAll(ctx context.Context, userTgID int64) (*domain.PollCustomOptions, error)
	DisableAll(ctx context.Context, userTgID int64) (*domain.PollCustomOptions, error)

	// Complete finishes the selection flow: an empty selection cancels
	// pending DailyEvents polls, a non-empty one ensures a poll is queued.
	Complete(ctx context.Context, userTgID int64) (SelectionOutcome, error)
}
