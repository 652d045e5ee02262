package services

import (
	"context"
	"fmt"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

// In-memory fakes for the ports the services depend on. Error fields inject
// failures; zero values behave like an empty, healthy store.

type fakePollRepo struct {
	polls  []*domain.Poll
	nextID int64

	// send-at overrides consulted by ScheduleNext, keyed by chat id
	overrides map[int64]*domain.TimeOfDay

	pendingErr         error
	overdueErr         error
	scheduleErr        error
	markPublishedErr   error
	createPublishedErr error
	disableErr         error
	setOverdueErr      error
	getByTgIDErr       error

	disableCalls  int
	cancelCalls   int
	scheduleCalls int
}

func (f *fakePollRepo) add(poll *domain.Poll) *domain.Poll {
	f.nextID++
	poll.ID = f.nextID
	f.polls = append(f.polls, poll)
	return poll
}

func (f *fakePollRepo) Create(ctx context.Context, chatTgID int64, kind domain.PollKind, at time.Time) (*domain.Poll, error) {
	return f.add(&domain.Poll{ChatTgID: chatTgID, Kind: kind, PublicationDate: at}), nil
}

func (f *fakePollRepo) CreateInitialForUser(ctx context.Context, user *domain.User) ([]*domain.Poll, error) {
	polls := make([]*domain.Poll, 0, len(user.SubscribedPolls()))
	for _, kind := range user.SubscribedPolls() {
		polls = append(polls, f.add(&domain.Poll{
			ChatTgID:        user.TgID,
			Kind:            kind,
			PublicationDate: time.Now().UTC(),
		}))
	}
	return polls, nil
}

func (f *fakePollRepo) ExistsUnpublishedAfter(ctx context.Context, chatTgID int64, kind domain.PollKind, after time.Time) (bool, error) {
	for _, p := range f.polls {
		if p.ChatTgID == chatTgID && p.Kind == kind && !p.Published && p.PublicationDate.After(after) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePollRepo) ScheduleNext(ctx context.Context, poll *domain.Poll) (*domain.Poll, bool, error) {
	f.scheduleCalls++
	if f.scheduleErr != nil {
		return nil, false, f.scheduleErr
	}

	exists, _ := f.ExistsUnpublishedAfter(ctx, poll.ChatTgID, poll.Kind, time.Now().UTC())
	if exists {
		return nil, false, nil
	}

	next := poll.Kind.ScheduleNext(time.Now().UTC(), f.overrides[poll.ChatTgID])
	return f.add(&domain.Poll{
		ChatTgID:        poll.ChatTgID,
		Kind:            poll.Kind,
		PublicationDate: next,
	}), true, nil
}

func (f *fakePollRepo) MarkPublished(ctx context.Context, poll *domain.Poll, tgID string, tgMessageID int) (*domain.Poll, error) {
	if f.markPublishedErr != nil {
		return nil, f.markPublishedErr
	}
	if !poll.Persisted() {
		return nil, domain.ErrNotPersisted
	}
	poll.TgID = tgID
	poll.TgMessageID = tgMessageID
	poll.Published = true
	return poll, nil
}

func (f *fakePollRepo) CreatePublished(ctx context.Context, poll *domain.Poll, tgID string, tgMessageID int) (*domain.Poll, error) {
	if f.createPublishedErr != nil {
		return nil, f.createPublishedErr
	}
	return f.add(&domain.Poll{
		TgID:            tgID,
		TgMessageID:     tgMessageID,
		ChatTgID:        poll.ChatTgID,
		Kind:            poll.Kind,
		PublicationDate: poll.PublicationDate,
		Published:       true,
	}), nil
}

func (f *fakePollRepo) GetPending(ctx context.Context, now time.Time) ([]*domain.Poll, error) {
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	var due []*domain.Poll
	for _, p := range f.polls {
		if p.Due(now) {
			due = append(due, p)
		}
	}
	return due, nil
}

func (f *fakePollRepo) GetOverdue(ctx context.Context, kind domain.PollKind, now time.Time) ([]*domain.Poll, error) {
	if f.overdueErr != nil {
		return nil, f.overdueErr
	}
	var overdue []*domain.Poll
	for _, p := range f.polls {
		if p.Kind == kind && p.Published && !p.Overdue && p.PublicationDate.Before(now.Add(-kind.OverdueInterval())) {
			overdue = append(overdue, p)
		}
	}
	return overdue, nil
}

func (f *fakePollRepo) GetScheduledForUser(ctx context.Context, chatTgID int64, kind domain.PollKind) ([]*domain.Poll, error) {
	now := time.Now().UTC()
	var scheduled []*domain.Poll
	for _, p := range f.polls {
		if p.ChatTgID == chatTgID && p.Kind == kind && !p.Published && p.PublicationDate.After(now) {
			scheduled = append(scheduled, p)
		}
	}
	return scheduled, nil
}

func (f *fakePollRepo) UpdatePublicationDate(ctx context.Context, poll *domain.Poll, at time.Time) error {
	poll.PublicationDate = at
	return nil
}

func (f *fakePollRepo) DisablePendingForUser(ctx context.Context, chatTgID int64, kind domain.PollKind) (int64, error) {
	f.disableCalls++
	if f.disableErr != nil {
		return 0, f.disableErr
	}

	now := time.Now().UTC()
	kept := f.polls[:0]
	var removed int64
	for _, p := range f.polls {
		if p.ChatTgID == chatTgID && p.Kind == kind && !p.Published && p.PublicationDate.After(now) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	f.polls = kept
	return removed, nil
}

func (f *fakePollRepo) Cancel(ctx context.Context, poll *domain.Poll) error {
	f.cancelCalls++
	if !poll.Persisted() {
		return domain.ErrNotPersisted
	}

	kept := f.polls[:0]
	for _, p := range f.polls {
		if p.ID == poll.ID && !p.Published {
			continue
		}
		kept = append(kept, p)
	}
	f.polls = kept
	return nil
}

func (f *fakePollRepo) SetOverdue(ctx context.Context, poll *domain.Poll) (int64, error) {
	if f.setOverdueErr != nil {
		return 0, f.setOverdueErr
	}
	if poll.Overdue {
		return 0, nil
	}
	poll.Overdue = true
	return 1, nil
}

func (f *fakePollRepo) GetByTgID(ctx context.Context, tgID string) (*domain.Poll, error) {
	if f.getByTgIDErr != nil {
		return nil, f.getByTgIDErr
	}
	for _, p := range f.polls {
		if p.TgID == tgID {
			return p, nil
		}
	}
	return nil, domain.ErrPollNotFound
}

var _ ports.PollRepository = (*fakePollRepo)(nil)

type sentPollCall struct {
	chatTgID       int64
	question       string
	options        []string
	allowsMultiple bool
}

type fakeChannel struct {
	sendCalls []sentPollCall
	messages  []string
	deleted   []int

	// chunksPerSend controls how many SentPoll entries each SendPoll call
	// returns; zero means one.
	chunksPerSend int
	sendErr       error
	deleteErr     error
}

func (f *fakeChannel) SendPoll(ctx context.Context, chatTgID int64, question string, options []string, allowsMultiple bool) ([]ports.SentPoll, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sendCalls = append(f.sendCalls, sentPollCall{
		chatTgID:       chatTgID,
		question:       question,
		options:        options,
		allowsMultiple: allowsMultiple,
	})

	n := f.chunksPerSend
	if n == 0 {
		n = 1
	}
	sent := make([]ports.SentPoll, 0, n)
	for i := 0; i < n; i++ {
		sent = append(sent, ports.SentPoll{
			TgID:        fmt.Sprintf("tg-%d-%d", len(f.sendCalls), i),
			TgMessageID: len(f.sendCalls)*100 + i,
		})
	}
	return sent, nil
}

func (f *fakeChannel) SendMessage(ctx context.Context, chatTgID int64, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeChannel) DeleteMessage(ctx context.Context, chatTgID int64, messageID int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

var _ ports.Channel = (*fakeChannel)(nil)

type optionsKey struct {
	userTgID int64
	kind     domain.PollKind
}

type fakeOptionsRepo struct {
	selections map[optionsKey][]string
	getErr     error
}

func (f *fakeOptionsRepo) set(userTgID int64, kind domain.PollKind, options ...string) {
	if f.selections == nil {
		f.selections = make(map[optionsKey][]string)
	}
	f.selections[optionsKey{userTgID, kind}] = options
}

func (f *fakeOptionsRepo) GetForUser(ctx context.Context, userTgID int64, kind domain.PollKind) (*domain.PollCustomOptions, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	options := f.selections[optionsKey{userTgID, kind}]
	return &domain.PollCustomOptions{
		UserTgID: userTgID,
		Kind:     kind,
		Options:  append([]string{}, options...),
	}, nil
}

func (f *fakeOptionsRepo) Toggle(ctx context.Context, userTgID int64, kind domain.PollKind, option string) error {
	key := optionsKey{userTgID, kind}
	current := f.selections[key]
	for i, o := range current {
		if o == option {
			f.set(userTgID, kind, append(current[:i:i], current[i+1:]...)...)
			return nil
		}
	}
	f.set(userTgID, kind, append(current, option)...)
	return nil
}

func (f *fakeOptionsRepo) Clear(ctx context.Context, userTgID int64, kind domain.PollKind) error {
	delete(f.selections, optionsKey{userTgID, kind})
	return nil
}

var _ ports.CustomOptionsRepository = (*fakeOptionsRepo)(nil)

type fakeUserRepo struct {
	users       map[int64]*domain.User
	answerCount int64
}

func (f *fakeUserRepo) put(user *domain.User) {
	if f.users == nil {
		f.users = make(map[int64]*domain.User)
	}
	f.users[user.TgID] = user
}

func (f *fakeUserRepo) GetActiveByID(ctx context.Context, tgID int64) (*domain.User, error) {
	user, ok := f.users[tgID]
	if !ok || !user.Active {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Activate(ctx context.Context, tgID int64) (*domain.User, error) {
	user := &domain.User{TgID: tgID, Active: true}
	f.put(user)
	return user, nil
}

func (f *fakeUserRepo) Deactivate(ctx context.Context, tgID int64) (*domain.User, error) {
	user := &domain.User{TgID: tgID, Active: false}
	f.put(user)
	return user, nil
}

func (f *fakeUserRepo) CountAnsweredPolls(ctx context.Context, tgID int64, kind domain.PollKind) (int64, error) {
	return f.answerCount, nil
}

var _ ports.UserRepository = (*fakeUserRepo)(nil)

type fakeAnswerRepo struct {
	saved     []*domain.PollAnswer
	dayStats  []domain.PollStat
	userStats []domain.PollUserStat

	saveErr error
}

func (f *fakeAnswerRepo) SaveAll(ctx context.Context, answers []*domain.PollAnswer) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, answers...)
	return nil
}

func (f *fakeAnswerRepo) GetDayStats(ctx context.Context, kind domain.PollKind, day time.Time) ([]domain.PollStat, error) {
	return f.dayStats, nil
}

func (f *fakeAnswerRepo) GetUserStats(ctx context.Context, kind domain.PollKind, chatTgID int64, since, until time.Time) ([]domain.PollUserStat, error) {
	return f.userStats, nil
}

var _ ports.AnswerRepository = (*fakeAnswerRepo)(nil)

type fakeSettingsRepo struct {
	sendAt map[optionsKey]*domain.TimeOfDay
}

func (f *fakeSettingsRepo) SetSendAt(ctx context.Context, userTgID int64, kind domain.PollKind, at domain.TimeOfDay) (*domain.PollSettings, error) {
	if f.sendAt == nil {
		f.sendAt = make(map[optionsKey]*domain.TimeOfDay)
	}
	f.sendAt[optionsKey{userTgID, kind}] = &at
	return &domain.PollSettings{UserTgID: userTgID, Kind: kind, SendAtUTC: &at}, nil
}

var _ ports.SettingsRepository = (*fakeSettingsRepo)(nil)
