package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

type answerService struct {
	polls   ports.PollRepository
	answers ports.AnswerRepository
	logger  *slog.Logger
}

func NewAnswerService(polls ports.PollRepository, answers ports.AnswerRepository, logger *slog.Logger) ports.AnswerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &answerService{
		polls:   polls,
		answers: answers,
		logger:  logger,
	}
}

func (s *answerService) Ingest(ctx context.Context, update ports.PollUpdate) (*domain.Poll, error) {
	// An answer for a poll we never published is a data integrity problem;
	// surface it before persisting anything.
	poll, err := s.polls.GetByTgID(ctx, update.TgID)
	if err != nil {
		return nil, fmt.Errorf("looking up answered poll %q: %w", update.TgID, err)
	}

	now := time.Now().UTC()
	var answers []*domain.PollAnswer
	for idx, option := range update.Options {
		if option.VoterCount <= 0 {
			continue
		}

		answers = append(answers, &domain.PollAnswer{
			ID:                uuid.New(),
			PollTgID:          update.TgID,
			SelectedValue:     idx,
			SelectedValueText: option.Text,
			CreatedAt:         now,
		})
	}

	// All rows of a multiple-answer update land in one transaction. A partial
	// write would make the poll count as answered for the overdue sweep.
	if err := s.answers.SaveAll(ctx, answers); err != nil {
		return nil, fmt.Errorf("saving answers for poll %q: %w", update.TgID, err)
	}

	s.logger.InfoContext(ctx, "saved poll answers",
		"poll_id", poll.ID,
		"poll_tg_id", update.TgID,
		"chat_tg_id", poll.ChatTgID,
		"selected", len(answers),
	)

	return poll, nil
}
