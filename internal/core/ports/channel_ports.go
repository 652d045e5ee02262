package ports

import "context"

// SentPoll identifies one poll message the channel accepted: the
// channel-assigned poll id used to match answers, and the message id used for
// later deletion.
type SentPoll struct {
	TgID        string
	TgMessageID int
}

// Channel is the external messaging transport the engine publishes through.
// SendPoll may return more than one entry when the option list exceeded the
// channel's per-poll limit and was split into several messages.
type Channel interface {
	SendPoll(ctx context.Context, chatTgID int64, question string, options []string, allowsMultiple bool) ([]SentPoll, error)
	SendMessage(ctx context.Context, chatTgID int64, text string) error

	// DeleteMessage is best-effort; callers tolerate failures.
	DeleteMessage(ctx context.Context, chatTgID int64, messageID int) error
}
