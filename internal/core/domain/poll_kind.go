package domain

import (
	"fmt"
	"time"
)

// PollKind enumerates the recurring survey types the bot sends. The set is
// closed and compiled in; timing and option policy live here as pure functions.
type PollKind int

const (
	PollKindHowWasYourDay PollKind = iota
	PollKindDailyEvents
	PollKindFoodAllergy
)

// scheduleNextThreshold is the boundary for same-day scheduling: a candidate
// send time closer than this to the current moment rolls over to the next day.
// Fixed design constant, not configurable.
const scheduleNextThreshold = 12 * time.Hour

var pollKindNames = map[PollKind]string{
	PollKindHowWasYourDay: "how_was_your_day",
	PollKindDailyEvents:   "daily_events",
	PollKindFoodAllergy:   "food_allergy",
}

var pollKindValues = func() map[string]PollKind {
	m := make(map[string]PollKind, len(pollKindNames))
	for kind, name := range pollKindNames {
		m[name] = kind
	}
	return m
}()

// AllPollKinds returns every kind in stable order.
func AllPollKinds() []PollKind {
	return []PollKind{PollKindHowWasYourDay, PollKindDailyEvents, PollKindFoodAllergy}
}

// ParsePollKind maps a stored string back to its kind.
func ParsePollKind(s string) (PollKind, error) {
	kind, ok := pollKindValues[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPollKind, s)
	}
	return kind, nil
}

func (k PollKind) String() string {
	name, ok := pollKindNames[k]
	if !ok {
		return fmt.Sprintf("poll_kind(%d)", int(k))
	}
	return name
}

func (k PollKind) Valid() bool {
	_, ok := pollKindNames[k]
	return ok
}

// SendAt returns the kind's default daily send time, UTC.
func (k PollKind) SendAt() TimeOfDay {
	switch k {
	case PollKindHowWasYourDay, PollKindDailyEvents:
		return NewTimeOfDay(19, 0)
	case PollKindFoodAllergy:
		return NewTimeOfDay(18, 0)
	default:
		return NewTimeOfDay(19, 0)
	}
}

func (k PollKind) Question() string {
	switch k {
	case PollKindHowWasYourDay:
		return "How was your day?"
	case PollKindDailyEvents:
		return "What happened today?"
	case PollKindFoodAllergy:
		return "Had you encountered any of described feelings after the meal today?"
	default:
		return ""
	}
}

func (k PollKind) AllowsMultipleAnswers() bool {
	return k == PollKindDailyEvents || k == PollKindFoodAllergy
}

// OverdueInterval is how long after publication an unanswered poll is declared
// overdue. Kept deliberately short of a full day multiple so the poll closes
// before the next occurrence of the same kind arrives.
func (k PollKind) OverdueInterval() time.Duration {
	switch k {
	case PollKindFoodAllergy:
		return 23 * time.Hour
	default:
		return 47 * time.Hour
	}
}

// HasCustomOptions reports whether the option list is sourced from the user's
// custom option set instead of a static list.
func (k PollKind) HasCustomOptions() bool {
	return k == PollKindDailyEvents
}

// StaticOptions returns the fixed option list for kinds that have one,
// nil for customizable kinds.
func (k PollKind) StaticOptions() []string {
	switch k {
	case PollKindHowWasYourDay:
		return []string{"+2 (perfect)", "+1", "0", "-1", "-2 (terrible)"}
	case PollKindFoodAllergy:
		return []string{"Shortness of breath", "Itching", "Bloating", "Nope, nothing :)"}
	default:
		return nil
	}
}

// ScheduleNext computes the next occurrence after current. The time-of-day
// component is replaced by override when present, the kind default otherwise.
// The candidate is kept only when it is at least scheduleNextThreshold ahead
// of current; otherwise a day is added. The result is always strictly after
// current.
func (k PollKind) ScheduleNext(current time.Time, override *TimeOfDay) time.Time {
	sendAt := k.SendAt()
	if override != nil {
		sendAt = *override
	}

	next := sendAt.On(current)
	if next.Sub(current) >= scheduleNextThreshold {
		return next
	}
	return next.Add(24 * time.Hour)
}
