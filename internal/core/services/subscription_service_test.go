package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daypulse/bot/internal/core/domain"
)

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{}
	polls := &fakePollRepo{}
	svc := NewSubscriptionService(users, polls, nil)

	result, err := svc.Subscribe(ctx, 42)
	require.NoError(t, err)
	assert.False(t, result.AlreadyActive)
	assert.True(t, result.User.Active)

	// one immediately-due poll per subscribed kind
	require.Len(t, result.InitialPolls, 1)
	initial := result.InitialPolls[0]
	assert.Equal(t, domain.PollKindHowWasYourDay, initial.Kind)
	assert.False(t, initial.Published)
	assert.True(t, initial.Due(time.Now().UTC().Add(time.Second)))
}

func TestSubscribeAlreadyActive(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{}
	users.put(&domain.User{TgID: 42, Active: true})
	polls := &fakePollRepo{}
	svc := NewSubscriptionService(users, polls, nil)

	result, err := svc.Subscribe(ctx, 42)
	require.NoError(t, err)
	assert.True(t, result.AlreadyActive)
	assert.Empty(t, result.InitialPolls)
	assert.Empty(t, polls.polls)
}

func TestSubscribeAfterUnsubscribe(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{}
	users.put(&domain.User{TgID: 42, Active: false})
	svc := NewSubscriptionService(users, &fakePollRepo{}, nil)

	result, err := svc.Subscribe(ctx, 42)
	require.NoError(t, err)
	assert.False(t, result.AlreadyActive)
	assert.Len(t, result.InitialPolls, 1)
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{}
	users.put(&domain.User{TgID: 42, Active: true})
	polls := &fakePollRepo{}
	svc := NewSubscriptionService(users, polls, nil)

	future := time.Now().UTC().Add(24 * time.Hour)
	polls.add(&domain.Poll{ChatTgID: 42, Kind: domain.PollKindHowWasYourDay, PublicationDate: future})
	polls.add(&domain.Poll{ChatTgID: 42, Kind: domain.PollKindDailyEvents, PublicationDate: future})
	published := polls.add(&domain.Poll{
		ChatTgID:        42,
		Kind:            domain.PollKindHowWasYourDay,
		PublicationDate: time.Now().UTC().Add(-time.Hour),
		Published:       true,
	})
	otherUsers := polls.add(&domain.Poll{ChatTgID: 7, Kind: domain.PollKindHowWasYourDay, PublicationDate: future})

	user, err := svc.Unsubscribe(ctx, 42)
	require.NoError(t, err)
	assert.False(t, user.Active)

	// pending polls cancelled across kinds, published and foreign rows kept
	assert.Len(t, polls.polls, 2)
	assert.Contains(t, polls.polls, published)
	assert.Contains(t, polls.polls, otherUsers)
}
