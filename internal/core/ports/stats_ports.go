package ports

import (
	"context"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
)

// StatsService renders reports from already-persisted answers. It is a
// read-only consumer of the polls/poll_answers join.
type StatsService interface {
	// DailyReport renders the community distribution for the kind's current
	// survey day plus the user's own last-week row.
	DailyReport(ctx context.Context, kind domain.PollKind, chatTgID int64, now time.Time) (string, error)
}
