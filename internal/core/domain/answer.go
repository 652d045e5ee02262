package domain

import (
	"time"

	"github.com/google/uuid"
)

// PollAnswer is one selected option of one answered poll. A poll allowing
// multiple answers yields one row per selected option. Rows are immutable.
type PollAnswer struct {
	ID                uuid.UUID
	PollTgID          string
	SelectedValue     int    // ordinal index into the option list at answer time
	SelectedValueText string // snapshot of the option text for later reporting
	CreatedAt         time.Time
}
