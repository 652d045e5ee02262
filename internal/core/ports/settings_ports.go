package ports

import (
	"context"

	"github.com/daypulse/bot/internal/core/domain"
)

// SettingsRepository writes send-time overrides. Reads happen where they are
// needed: the scheduling transaction resolves the override itself when it
// computes the next occurrence.
type SettingsRepository interface {
	// SetSendAt upserts the user's preferred send time for the kind.
	SetSendAt(ctx context.Context, userTgID int64, kind domain.PollKind, at domain.TimeOfDay) (*domain.PollSettings, error)
}

type SettingsService interface {
	// SetSendAt stores the override for every kind the schedule flow covers
	// and retargets the user's already-scheduled polls: the new time of day is
	// applied in place, rolled one day forward when the result is in the past.
	SetSendAt(ctx context.Context, userTgID int64, at domain.TimeOfDay) error
}
