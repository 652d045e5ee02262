package domain

import "time"

// PollStat is one (option, day) bucket of answer counts for a kind, read from
// the polls/poll_answers join for reporting.
type PollStat struct {
	Kind          PollKind
	Date          time.Time
	SelectedValue int
	NSelected     int64
}

// PollUserStat is one answered value of one user on one day, used for the
// personal last-week summary.
type PollUserStat struct {
	Date          time.Time
	SelectedValue int
}
