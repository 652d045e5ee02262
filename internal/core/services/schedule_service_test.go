package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daypulse/bot/internal/core/domain"
)

func duePoll(repo *fakePollRepo, chatTgID int64, kind domain.PollKind) *domain.Poll {
	return repo.add(&domain.Poll{
		ChatTgID:        chatTgID,
		Kind:            kind,
		PublicationDate: time.Now().UTC().Add(-time.Minute),
	})
}

func TestPublishDue(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	channel := &fakeChannel{}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, channel, nil)

	poll := duePoll(repo, 42, domain.PollKindHowWasYourDay)

	require.NoError(t, svc.PublishDue(ctx, time.Now().UTC()))

	require.Len(t, channel.sendCalls, 1)
	call := channel.sendCalls[0]
	assert.Equal(t, int64(42), call.chatTgID)
	assert.Equal(t, "How was your day?", call.question)
	assert.Equal(t, domain.PollKindHowWasYourDay.StaticOptions(), call.options)
	assert.False(t, call.allowsMultiple)

	assert.True(t, poll.Published)
	assert.NotEmpty(t, poll.TgID)
	assert.NotZero(t, poll.TgMessageID)

	// the next occurrence was queued
	scheduled, err := repo.GetScheduledForUser(ctx, 42, domain.PollKindHowWasYourDay)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.False(t, scheduled[0].Published)
}

func TestPublishDueNothingPending(t *testing.T) {
	channel := &fakeChannel{}
	svc := NewScheduleService(&fakePollRepo{}, &fakeOptionsRepo{}, channel, nil)

	require.NoError(t, svc.PublishDue(context.Background(), time.Now().UTC()))
	assert.Empty(t, channel.sendCalls)
}

func TestPublishDueQueueUnreadable(t *testing.T) {
	repo := &fakePollRepo{pendingErr: errors.New("connection refused")}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, &fakeChannel{}, nil)

	err := svc.PublishDue(context.Background(), time.Now().UTC())
	assert.ErrorIs(t, err, ErrQueueUnavailable)
}

func TestPublishDueIsolatesPerPollFailures(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	// every send fails, but the sweep itself must still succeed
	channel := &fakeChannel{sendErr: errors.New("telegram is down")}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, channel, nil)

	first := duePoll(repo, 1, domain.PollKindHowWasYourDay)
	second := duePoll(repo, 2, domain.PollKindHowWasYourDay)

	require.NoError(t, svc.PublishDue(ctx, time.Now().UTC()))
	assert.False(t, first.Published)
	assert.False(t, second.Published)
}

func TestPublishDueCustomOptions(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	options := &fakeOptionsRepo{}
	options.set(42, domain.PollKindDailyEvents, "Alcohol", "Sports/activity")
	channel := &fakeChannel{}
	svc := NewScheduleService(repo, options, channel, nil)

	duePoll(repo, 42, domain.PollKindDailyEvents)

	require.NoError(t, svc.PublishDue(ctx, time.Now().UTC()))

	require.Len(t, channel.sendCalls, 1)
	call := channel.sendCalls[0]
	assert.Equal(t, []string{"Alcohol", "Sports/activity", domain.DailyEventsNoneOption}, call.options)
	assert.True(t, call.allowsMultiple)
}

func TestPublishDueCancelsEmptySelection(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	channel := &fakeChannel{}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, channel, nil)

	// no custom options enabled: the list is just the catch-all entry
	duePoll(repo, 42, domain.PollKindDailyEvents)

	require.NoError(t, svc.PublishDue(ctx, time.Now().UTC()))
	assert.Empty(t, channel.sendCalls)
	assert.Equal(t, 1, repo.cancelCalls)
	assert.Equal(t, 1, repo.disableCalls)

	// the cancelled poll leaves the due set for good; a later sweep must not
	// pick it up and cancel it again
	pending, err := repo.GetPending(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, svc.PublishDue(ctx, time.Now().UTC()))
	assert.Equal(t, 1, repo.cancelCalls)
	assert.Equal(t, 1, repo.disableCalls)
}

func TestPublishDueChunkedRows(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	channel := &fakeChannel{chunksPerSend: 2}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, channel, nil)

	poll := duePoll(repo, 42, domain.PollKindHowWasYourDay)

	require.NoError(t, svc.PublishDue(ctx, time.Now().UTC()))

	// original row published plus one extra published row per extra chunk,
	// plus the scheduled next occurrence
	var published []*domain.Poll
	for _, p := range repo.polls {
		if p.Published {
			published = append(published, p)
		}
	}
	require.Len(t, published, 2)
	assert.NotEqual(t, published[0].TgID, published[1].TgID)
	assert.Equal(t, poll.ChatTgID, published[1].ChatTgID)
	assert.Equal(t, poll.PublicationDate, published[1].PublicationDate)

	// chunking must not multiply the scheduled next occurrence
	assert.Equal(t, 1, repo.scheduleCalls)
	scheduled, err := repo.GetScheduledForUser(ctx, 42, domain.PollKindHowWasYourDay)
	require.NoError(t, err)
	assert.Len(t, scheduled, 1)
}

func TestPublishDueSkipsScheduleWhenAlreadyQueued(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, &fakeChannel{}, nil)

	duePoll(repo, 42, domain.PollKindHowWasYourDay)
	// a future poll already exists
	repo.add(&domain.Poll{
		ChatTgID:        42,
		Kind:            domain.PollKindHowWasYourDay,
		PublicationDate: time.Now().UTC().Add(24 * time.Hour),
	})

	require.NoError(t, svc.PublishDue(ctx, time.Now().UTC()))

	scheduled, err := repo.GetScheduledForUser(ctx, 42, domain.PollKindHowWasYourDay)
	require.NoError(t, err)
	assert.Len(t, scheduled, 1)
}

func TestSweepOverdue(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	channel := &fakeChannel{}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, channel, nil)

	now := time.Now().UTC()
	old := repo.add(&domain.Poll{
		TgID:            "old",
		TgMessageID:     7,
		ChatTgID:        42,
		Kind:            domain.PollKindHowWasYourDay,
		PublicationDate: now.Add(-48 * time.Hour),
		Published:       true,
	})
	fresh := repo.add(&domain.Poll{
		TgID:            "fresh",
		ChatTgID:        42,
		Kind:            domain.PollKindHowWasYourDay,
		PublicationDate: now.Add(-time.Hour),
		Published:       true,
	})

	require.NoError(t, svc.SweepOverdue(ctx, now))

	assert.True(t, old.Overdue)
	assert.False(t, fresh.Overdue)
	assert.Equal(t, []int{7}, channel.deleted)
}

func TestSweepOverdueDeleteFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := &fakePollRepo{}
	channel := &fakeChannel{deleteErr: errors.New("message already gone")}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, channel, nil)

	now := time.Now().UTC()
	poll := repo.add(&domain.Poll{
		TgID:            "old",
		ChatTgID:        42,
		Kind:            domain.PollKindFoodAllergy,
		PublicationDate: now.Add(-24 * time.Hour),
		Published:       true,
	})

	require.NoError(t, svc.SweepOverdue(ctx, now))
	assert.True(t, poll.Overdue)
}

func TestSweepOverdueQueueUnreadable(t *testing.T) {
	repo := &fakePollRepo{overdueErr: errors.New("connection refused")}
	svc := NewScheduleService(repo, &fakeOptionsRepo{}, &fakeChannel{}, nil)

	err := svc.SweepOverdue(context.Background(), time.Now().UTC())
	assert.ErrorIs(t, err, ErrQueueUnavailable)
}
