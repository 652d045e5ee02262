package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetActiveByID(ctx context.Context, tgID int64) (*domain.User, error) {
	query := `
		SELECT tg_id, active
		FROM users
		WHERE tg_id = $1 AND active
	`
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, tgID).Scan(&user.TgID, &user.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Activate(ctx context.Context, tgID int64) (*domain.User, error) {
	return r.upsert(ctx, tgID, true)
}

func (r *userRepository) Deactivate(ctx context.Context, tgID int64) (*domain.User, error) {
	return r.upsert(ctx, tgID, false)
}

func (r *userRepository) upsert(ctx context.Context, tgID int64, active bool) (*domain.User, error) {
	query := `
		INSERT INTO users (tg_id, active)
		VALUES ($1, $2)
		ON CONFLICT (tg_id) DO UPDATE SET active = $2
		RETURNING tg_id, active
	`
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, tgID, active).Scan(&user.TgID, &user.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) CountAnsweredPolls(ctx context.Context, tgID int64, kind domain.PollKind) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT polls.tg_id)
		FROM polls
		JOIN poll_answers ON polls.tg_id = poll_answers.poll_tg_id
		WHERE polls.chat_tg_id = $1 AND polls.kind = $2
	`
	var count int64
	err := r.db.QueryRowContext(ctx, query, tgID, kind.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count answered polls: %w", err)
	}
	return count, nil
}
