package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

const pollColumns = `id, tg_id, tg_message_id, chat_tg_id, kind, publication_date, published, overdue`

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Create(ctx context.Context, chatTgID int64, kind domain.PollKind, at time.Time) (*domain.Poll, error) {
	query := `
		INSERT INTO polls (chat_tg_id, kind, publication_date, published)
		VALUES ($1, $2, $3, false)
		RETURNING ` + pollColumns
	row := r.db.QueryRowContext(ctx, query, chatTgID, kind.String(), at.UTC())

	poll, err := scanPoll(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert poll: %w", err)
	}
	return poll, nil
}

func (r *pollRepository) CreateInitialForUser(ctx context.Context, user *domain.User) ([]*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO polls (chat_tg_id, kind, publication_date, published)
		VALUES ($1, $2, $3, false)
		RETURNING ` + pollColumns

	now := time.Now().UTC()
	kinds := user.SubscribedPolls()
	polls := make([]*domain.Poll, 0, len(kinds))
	for _, kind := range kinds {
		row := tx.QueryRowContext(ctx, query, user.TgID, kind.String(), now)
		poll, err := scanPoll(row)
		if err != nil {
			return nil, fmt.Errorf("failed to insert initial %s poll: %w", kind, err)
		}
		polls = append(polls, poll)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) ExistsUnpublishedAfter(ctx context.Context, chatTgID int64, kind domain.PollKind, after time.Time) (bool, error) {
	query := `
		SELECT 1 FROM polls
		WHERE chat_tg_id = $1 AND kind = $2 AND NOT published AND publication_date > $3
		LIMIT 1
	`
	var exists int
	err := r.db.QueryRowContext(ctx, query, chatTgID, kind.String(), after.UTC()).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check scheduled poll: %w", err)
	}
	return true, nil
}

// ScheduleNext reads the user's send-time override, computes the next
// occurrence via the kind policy and inserts it, unless a future unpublished
// poll of the same kind already exists. The check-then-insert pair runs in one
// transaction but is not guarded by a unique constraint; a single scheduler
// process is assumed.
func (r *pollRepository) ScheduleNext(ctx context.Context, poll *domain.Poll) (*domain.Poll, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var override *domain.TimeOfDay
	var sendAt domain.TimeOfDay
	err = tx.QueryRowContext(ctx, `
		SELECT send_at_utc FROM poll_settings
		WHERE user_tg_id = $1 AND poll_kind = $2 AND send_at_utc IS NOT NULL
	`, poll.ChatTgID, poll.Kind.String()).Scan(&sendAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no override, kind default applies
	case err != nil:
		return nil, false, fmt.Errorf("failed to read schedule override: %w", err)
	default:
		override = &sendAt
	}

	nextAt := poll.Kind.ScheduleNext(poll.PublicationDate, override)

	var exists int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM polls
		WHERE chat_tg_id = $1 AND kind = $2 AND NOT published AND publication_date > NOW()
		LIMIT 1
	`, poll.ChatTgID, poll.Kind.String()).Scan(&exists)
	if err == nil {
		return nil, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to check scheduled poll: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO polls (chat_tg_id, kind, publication_date, published)
		VALUES ($1, $2, $3, false)
		RETURNING `+pollColumns,
		poll.ChatTgID, poll.Kind.String(), nextAt,
	)
	next, err := scanPoll(row)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert next poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return next, true, nil
}

func (r *pollRepository) MarkPublished(ctx context.Context, poll *domain.Poll, tgID string, tgMessageID int) (*domain.Poll, error) {
	if !poll.Persisted() {
		return nil, domain.ErrNotPersisted
	}

	query := `
		UPDATE polls
		SET tg_id = $2, tg_message_id = $3, published = true
		WHERE id = $1
		RETURNING ` + pollColumns
	row := r.db.QueryRowContext(ctx, query, poll.ID, tgID, tgMessageID)

	updated, err := scanPoll(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to mark poll published: %w", err)
	}
	return updated, nil
}

func (r *pollRepository) CreatePublished(ctx context.Context, poll *domain.Poll, tgID string, tgMessageID int) (*domain.Poll, error) {
	query := `
		INSERT INTO polls (tg_id, tg_message_id, chat_tg_id, kind, publication_date, published)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING ` + pollColumns
	row := r.db.QueryRowContext(ctx, query,
		tgID, tgMessageID, poll.ChatTgID, poll.Kind.String(), poll.PublicationDate.UTC())

	inserted, err := scanPoll(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert published poll chunk: %w", err)
	}
	return inserted, nil
}

func (r *pollRepository) GetPending(ctx context.Context, now time.Time) ([]*domain.Poll, error) {
	query := `
		SELECT polls.id, polls.tg_id, polls.tg_message_id, polls.chat_tg_id,
		       polls.kind, polls.publication_date, polls.published, polls.overdue
		FROM polls
		JOIN users ON polls.chat_tg_id = users.tg_id
		WHERE NOT polls.published
		  AND polls.publication_date < $1
		  AND users.active
		ORDER BY polls.chat_tg_id, polls.kind
	`
	rows, err := r.db.QueryContext(ctx, query, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get pending polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) GetOverdue(ctx context.Context, kind domain.PollKind, now time.Time) ([]*domain.Poll, error) {
	cutoff := now.UTC().Add(-kind.OverdueInterval())

	query := `
		SELECT polls.id, polls.tg_id, polls.tg_message_id, polls.chat_tg_id,
		       polls.kind, polls.publication_date, polls.published, polls.overdue
		FROM polls
		LEFT JOIN poll_answers ON polls.tg_id = poll_answers.poll_tg_id
		WHERE polls.published
		  AND NOT polls.overdue
		  AND polls.kind = $1
		  AND polls.publication_date < $2
		  AND poll_answers.id IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query, kind.String(), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) GetScheduledForUser(ctx context.Context, chatTgID int64, kind domain.PollKind) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE chat_tg_id = $1 AND kind = $2 AND NOT published AND publication_date > NOW()
		ORDER BY publication_date
	`
	rows, err := r.db.QueryContext(ctx, query, chatTgID, kind.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) UpdatePublicationDate(ctx context.Context, poll *domain.Poll, at time.Time) error {
	if !poll.Persisted() {
		return domain.ErrNotPersisted
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE polls SET publication_date = $2 WHERE id = $1`,
		poll.ID, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to update publication date: %w", err)
	}
	return nil
}

func (r *pollRepository) DisablePendingForUser(ctx context.Context, chatTgID int64, kind domain.PollKind) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM polls
		WHERE chat_tg_id = $1 AND kind = $2 AND NOT published AND publication_date > NOW()
	`, chatTgID, kind.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete pending polls: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted polls: %w", err)
	}
	return deleted, nil
}

func (r *pollRepository) Cancel(ctx context.Context, poll *domain.Poll) error {
	if !poll.Persisted() {
		return domain.ErrNotPersisted
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM polls WHERE id = $1 AND NOT published`,
		poll.ID)
	if err != nil {
		return fmt.Errorf("failed to cancel poll: %w", err)
	}
	return nil
}

func (r *pollRepository) SetOverdue(ctx context.Context, poll *domain.Poll) (int64, error) {
	if !poll.Persisted() {
		return 0, domain.ErrNotPersisted
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE polls SET overdue = true WHERE id = $1 AND NOT overdue`,
		poll.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to set overdue flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count updated polls: %w", err)
	}
	return affected, nil
}

func (r *pollRepository) GetByTgID(ctx context.Context, tgID string) (*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE tg_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, tgID)

	poll, err := scanPoll(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll by tg id: %w", err)
	}
	return poll, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var (
		poll        domain.Poll
		tgID        sql.NullString
		tgMessageID sql.NullInt64
		kind        string
	)
	err := row.Scan(&poll.ID, &tgID, &tgMessageID, &poll.ChatTgID,
		&kind, &poll.PublicationDate, &poll.Published, &poll.Overdue)
	if err != nil {
		return nil, err
	}

	poll.TgID = tgID.String
	poll.TgMessageID = int(tgMessageID.Int64)
	poll.Kind, err = domain.ParsePollKind(kind)
	if err != nil {
		return nil, err
	}
	poll.PublicationDate = poll.PublicationDate.UTC()
	return &poll, nil
}

func scanPolls(rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}
