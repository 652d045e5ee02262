package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

type customOptionsRepository struct {
	db *sql.DB
}

func NewCustomOptionsRepository(db *sql.DB) ports.CustomOptionsRepository {
	return &customOptionsRepository{
		db: db,
	}
}

func (r *customOptionsRepository) GetForUser(ctx context.Context, userTgID int64, kind domain.PollKind) (*domain.PollCustomOptions, error) {
	query := `
		SELECT option_text
		FROM poll_custom_options
		WHERE user_tg_id = $1 AND poll_kind = $2
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userTgID, kind.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get custom options: %w", err)
	}
	defer rows.Close()

	options := []string{}
	for rows.Next() {
		var option string
		if err := rows.Scan(&option); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, option)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}

	return &domain.PollCustomOptions{
		UserTgID: userTgID,
		Kind:     kind,
		Options:  options,
	}, nil
}

func (r *customOptionsRepository) Toggle(ctx context.Context, userTgID int64, kind domain.PollKind, option string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM poll_custom_options
		WHERE user_tg_id = $1 AND poll_kind = $2 AND option_text = $3
	`, userTgID, kind.String(), option).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_custom_options (user_tg_id, poll_kind, option_text)
			VALUES ($1, $2, $3)
		`, userTgID, kind.String(), option)
		if err != nil {
			return fmt.Errorf("failed to enable option: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to check option state: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM poll_custom_options WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to disable option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *customOptionsRepository) Clear(ctx context.Context, userTgID int64, kind domain.PollKind) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM poll_custom_options
		WHERE user_tg_id = $1 AND poll_kind = $2
	`, userTgID, kind.String())
	if err != nil {
		return fmt.Errorf("failed to clear options: %w", err)
	}
	return nil
}
