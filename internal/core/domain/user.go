package domain

// User is a Telegram chat subscribed to recurring polls. TgID is the external
// chat identifier and the storage key.
type User struct {
	TgID   int64
	Active bool
}

// SubscribedPolls returns the kinds a freshly activated user is subscribed to.
// DailyEvents and FoodAllergy are opt-in flows, not part of the default set.
func (u *User) SubscribedPolls() []PollKind {
	return []PollKind{PollKindHowWasYourDay}
}
