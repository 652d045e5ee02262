// Package services holds the application core: the poll scheduling engine,
// answer ingestion and the user-facing subscription, option and settings
// flows. Services depend only on the ports interfaces; transports and storage
// live in adapters.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

// ErrQueueUnavailable wraps failures to read the due or overdue poll sets.
// A scheduler that cannot see its own queue is unsafe to keep ticking, so the
// driver loop escalates these to a process shutdown. Per-poll failures are
// never wrapped with it.
var ErrQueueUnavailable = errors.New("scheduler queue unavailable")

type scheduleService struct {
	polls   ports.PollRepository
	options ports.CustomOptionsRepository
	channel ports.Channel
	logger  *slog.Logger
}

func NewScheduleService(
	polls ports.PollRepository,
	options ports.CustomOptionsRepository,
	channel ports.Channel,
	logger *slog.Logger,
) ports.ScheduleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleService{
		polls:   polls,
		options: options,
		channel: channel,
		logger:  logger,
	}
}

func (s *scheduleService) PublishDue(ctx context.Context, now time.Time) error {
	polls, err := s.polls.GetPending(ctx, now)
	if err != nil {
		return fmt.Errorf("%w: reading due polls: %w", ErrQueueUnavailable, err)
	}

	if len(polls) == 0 {
		return nil
	}
	s.logger.InfoContext(ctx, "found due polls", "count", len(polls))

	for _, poll := range polls {
		// One user's failure must not block the rest of the sweep.
		if err := s.publish(ctx, poll); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish poll",
				"poll_id", poll.ID,
				"chat_tg_id", poll.ChatTgID,
				"kind", poll.Kind.String(),
				"error", err,
			)
			continue
		}
	}

	return nil
}

// publish runs the Due -> Published transition for one poll: send (possibly
// chunked) to the channel, persist every chunk, then enqueue the next
// occurrence exactly once per publish batch.
func (s *scheduleService) publish(ctx context.Context, poll *domain.Poll) error {
	options, err := s.pollOptions(ctx, poll)
	if err != nil {
		return fmt.Errorf("building option list: %w", err)
	}

	if len(options) < 2 {
		// The user cleared their custom options after this poll was
		// scheduled; a one-option poll cannot be sent. Cancel instead of
		// retrying every tick. The due poll is past-dated, so it must be
		// deleted by id; DisablePendingForUser only covers future rows.
		if err := s.polls.Cancel(ctx, poll); err != nil {
			return fmt.Errorf("cancelling poll with empty option list: %w", err)
		}
		if _, err := s.polls.DisablePendingForUser(ctx, poll.ChatTgID, poll.Kind); err != nil {
			return fmt.Errorf("cancelling queued polls with empty option list: %w", err)
		}
		s.logger.WarnContext(ctx, "cancelled poll with too few options",
			"poll_id", poll.ID,
			"chat_tg_id", poll.ChatTgID,
			"kind", poll.Kind.String(),
		)
		return nil
	}

	sent, err := s.channel.SendPoll(ctx, poll.ChatTgID, poll.Kind.Question(), options, poll.Kind.AllowsMultipleAnswers())
	if err != nil {
		return fmt.Errorf("sending poll: %w", err)
	}
	if len(sent) == 0 {
		return fmt.Errorf("send-poll response carried no polls: %w", domain.ErrChannelProtocol)
	}

	published, err := s.polls.MarkPublished(ctx, poll, sent[0].TgID, sent[0].TgMessageID)
	if err != nil {
		return fmt.Errorf("marking poll published: %w", err)
	}

	// Chunked publications persist the 2nd..nth chunk as independent rows so
	// each one can match incoming answers on its own tg id.
	for _, chunk := range sent[1:] {
		if _, err := s.polls.CreatePublished(ctx, published, chunk.TgID, chunk.TgMessageID); err != nil {
			return fmt.Errorf("persisting poll chunk: %w", err)
		}
	}

	next, created, err := s.polls.ScheduleNext(ctx, published)
	if err != nil {
		return fmt.Errorf("scheduling next occurrence: %w", err)
	}
	if created {
		s.logger.InfoContext(ctx, "published poll and scheduled next occurrence",
			"poll_id", published.ID,
			"chat_tg_id", published.ChatTgID,
			"kind", published.Kind.String(),
			"next_poll_id", next.ID,
			"next_at", next.PublicationDate,
		)
	} else {
		s.logger.InfoContext(ctx, "published poll, next occurrence already scheduled",
			"poll_id", published.ID,
			"chat_tg_id", published.ChatTgID,
			"kind", published.Kind.String(),
		)
	}

	return nil
}

func (s *scheduleService) pollOptions(ctx context.Context, poll *domain.Poll) ([]string, error) {
	if !poll.Kind.HasCustomOptions() {
		return poll.Kind.StaticOptions(), nil
	}

	selection, err := s.options.GetForUser(ctx, poll.ChatTgID, poll.Kind)
	if err != nil {
		return nil, err
	}
	return append(selection.Options, domain.DailyEventsNoneOption), nil
}

func (s *scheduleService) SweepOverdue(ctx context.Context, now time.Time) error {
	for _, kind := range domain.AllPollKinds() {
		polls, err := s.polls.GetOverdue(ctx, kind, now)
		if err != nil {
			return fmt.Errorf("%w: reading overdue polls for %s: %w", ErrQueueUnavailable, kind, err)
		}

		if len(polls) == 0 {
			continue
		}
		s.logger.InfoContext(ctx, "found overdue polls", "kind", kind.String(), "count", len(polls))

		for _, poll := range polls {
			if err := s.markOverdue(ctx, poll); err != nil {
				s.logger.ErrorContext(ctx, "failed to mark poll overdue",
					"poll_id", poll.ID,
					"chat_tg_id", poll.ChatTgID,
					"error", err,
				)
				continue
			}
		}
	}

	return nil
}

// markOverdue runs the Published -> Overdue transition. The channel message
// delete is best-effort: the poll is marked overdue even when the stale
// message stays visible in the chat.
func (s *scheduleService) markOverdue(ctx context.Context, poll *domain.Poll) error {
	if err := s.channel.DeleteMessage(ctx, poll.ChatTgID, poll.TgMessageID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete overdue poll message",
			"poll_id", poll.ID,
			"chat_tg_id", poll.ChatTgID,
			"tg_message_id", poll.TgMessageID,
			"error", err,
		)
	}

	affected, err := s.polls.SetOverdue(ctx, poll)
	if err != nil {
		return fmt.Errorf("setting overdue flag: %w", err)
	}
	if affected == 0 {
		s.logger.WarnContext(ctx, "poll vanished before overdue flag update",
			"poll_id", poll.ID,
			"chat_tg_id", poll.ChatTgID,
		)
	}

	return nil
}
