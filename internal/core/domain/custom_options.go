package domain

// DailyEventsNoneOption is the catch-all appended to every DailyEvents option
// list so a user can always answer "nothing happened".
const DailyEventsNoneOption = "Nothing"

// DailyEventsCatalogue is the fixed set of events a user may enable for the
// DailyEvents poll. Order is the keyboard order.
var DailyEventsCatalogue = []string{
	"Went outside (>10 min)",
	"Slept >6 hours",
	"Talked to people in person",
	"Sports/activity",
	"Hobby/learning/side project",
	"Positive personal events",
	"Conflicts with people (online counts)",
	"Big news about the outside world",
	"Contact with family",
	"Sunny outside",
	"Stress at work",
	"Sex",
	"Alcohol",
	"Substances",
	"Trip out of town/travel",
	"Health issues",
}

// PollCustomOptions is the per-user, per-kind set of enabled options. Only
// kinds with HasCustomOptions() read it, but the model is generic.
type PollCustomOptions struct {
	UserTgID int64
	Kind     PollKind
	Options  []string
}

// Enabled reports whether the given option text is in the set.
func (c *PollCustomOptions) Enabled(option string) bool {
	for _, o := range c.Options {
		if o == option {
			return true
		}
	}
	return false
}
