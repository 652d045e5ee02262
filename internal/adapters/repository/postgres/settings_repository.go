package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) ports.SettingsRepository {
	return &settingsRepository{
		db: db,
	}
}

func (r *settingsRepository) SetSendAt(ctx context.Context, userTgID int64, kind domain.PollKind, at domain.TimeOfDay) (*domain.PollSettings, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO poll_settings (user_tg_id, poll_kind, send_at_utc)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_tg_id, poll_kind) DO UPDATE SET send_at_utc = $3
	`, userTgID, kind.String(), at)
	if err != nil {
		return nil, fmt.Errorf("failed to set send time: %w", err)
	}
	return &domain.PollSettings{
		UserTgID:  userTgID,
		Kind:      kind,
		SendAtUTC: &at,
	}, nil
}
