package domain

// PollSettings holds a user's per-kind schedule override. SendAtUTC, when set,
// replaces the kind's default send time in next-occurrence computation.
type PollSettings struct {
	UserTgID  int64
	Kind      PollKind
	SendAtUTC *TimeOfDay
}
