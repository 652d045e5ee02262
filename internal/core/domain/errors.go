package domain

import "errors"

var (
	// ErrPollNotFound is returned when a poll lookup matches no row. When the
	// lookup key came from an inbound answer event this indicates a data
	// integrity problem and must be surfaced, not swallowed.
	ErrPollNotFound = errors.New("poll not found")

	// ErrNotPersisted is returned by operations that require a storage-assigned
	// id on a poll that was never inserted.
	ErrNotPersisted = errors.New("poll is not persisted")

	// ErrChannelProtocol is returned when the messaging channel reported
	// success but the response lacks the expected poll substructure.
	ErrChannelProtocol = errors.New("unexpected channel response shape")

	ErrUserNotFound    = errors.New("user not found")
	ErrUnknownPollKind = errors.New("unknown poll kind")
	ErrInvalidSendTime = errors.New("invalid send time")
)
