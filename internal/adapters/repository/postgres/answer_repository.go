package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

type answerRepository struct {
	db *sql.DB
}

func NewAnswerRepository(db *sql.DB) ports.AnswerRepository {
	return &answerRepository{
		db: db,
	}
}

// SaveAll inserts every answer inside one transaction. The overdue sweep
// treats any answer row as "poll answered", so a partial batch must never
// become visible.
func (r *answerRepository) SaveAll(ctx context.Context, answers []*domain.PollAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO poll_answers (id, poll_tg_id, selected_value, selected_value_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, answer := range answers {
		_, err := tx.ExecContext(ctx, query,
			answer.ID, answer.PollTgID, answer.SelectedValue, answer.SelectedValueText, answer.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to save answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answers: %w", err)
	}
	return nil
}

// GetDayStats buckets answers by selected option for one survey day. The 12h
// shift pulls a poll published late in the evening and answered after
// midnight onto the same survey day.
func (r *answerRepository) GetDayStats(ctx context.Context, kind domain.PollKind, day time.Time) ([]domain.PollStat, error) {
	query := `
		SELECT polls.kind,
		       DATE(polls.publication_date - interval '12 hours'),
		       poll_answers.selected_value,
		       COUNT(poll_answers.id)
		FROM poll_answers
		JOIN polls ON poll_answers.poll_tg_id = polls.tg_id
		WHERE polls.kind = $1
		  AND DATE(polls.publication_date - interval '12 hours') = DATE($2)
		GROUP BY polls.kind, DATE(polls.publication_date - interval '12 hours'), poll_answers.selected_value
	`
	rows, err := r.db.QueryContext(ctx, query, kind.String(), day.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get day stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PollStat
	for rows.Next() {
		var (
			stat    domain.PollStat
			kindStr string
		)
		if err := rows.Scan(&kindStr, &stat.Date, &stat.SelectedValue, &stat.NSelected); err != nil {
			return nil, fmt.Errorf("failed to scan stat: %w", err)
		}
		stat.Kind, err = domain.ParsePollKind(kindStr)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}
	return stats, nil
}

func (r *answerRepository) GetUserStats(ctx context.Context, kind domain.PollKind, chatTgID int64, since, until time.Time) ([]domain.PollUserStat, error) {
	query := `
		SELECT DATE(polls.publication_date), poll_answers.selected_value
		FROM poll_answers
		JOIN polls ON poll_answers.poll_tg_id = polls.tg_id
		WHERE polls.kind = $1
		  AND polls.chat_tg_id = $2
		  AND polls.publication_date >= $3
		  AND polls.publication_date < $4
		ORDER BY DATE(polls.publication_date)
	`
	rows, err := r.db.QueryContext(ctx, query, kind.String(), chatTgID, since.UTC(), until.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PollUserStat
	for rows.Next() {
		var stat domain.PollUserStat
		if err := rows.Scan(&stat.Date, &stat.SelectedValue); err != nil {
			return nil, fmt.Errorf("failed to scan user stat: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user stats: %w", err)
	}
	return stats, nil
}
