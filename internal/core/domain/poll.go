package domain

import "time"

// MaxPollOptions is the channel's per-poll option limit. Option lists longer
// than this are split into several polls (see ChunkOptions).
const MaxPollOptions = 10

// Poll is one instance of a recurring question sent to a user. Before
// publication PublicationDate is the due moment; after publication it records
// when the poll was due.
type Poll struct {
	ID              int64 // storage-assigned, 0 until inserted
	TgID            string
	TgMessageID     int
	ChatTgID        int64
	Kind            PollKind
	PublicationDate time.Time
	Published       bool
	Overdue         bool
}

// Persisted reports whether the poll has a storage-assigned id.
func (p *Poll) Persisted() bool {
	return p.ID != 0
}

// Due reports whether the poll is unpublished and past its publication date.
func (p *Poll) Due(now time.Time) bool {
	return !p.Published && p.PublicationDate.Before(now)
}

// ChunkOptions splits an option list into chunks of at most limit entries.
// The chunk size is shrunk from limit downward until the final chunk would not
// hold a single lone option (len%size != 1), or the size reaches 1. A poll
// with a lone trailing option reads badly in the channel UI.
func ChunkOptions(options []string, limit int) [][]string {
	if len(options) == 0 {
		return nil
	}

	size := chunkSize(len(options), limit)
	chunks := make([][]string, 0, (len(options)+size-1)/size)
	for start := 0; start < len(options); start += size {
		end := start + size
		if end > len(options) {
			end = len(options)
		}
		chunks = append(chunks, options[start:end])
	}
	return chunks
}

func chunkSize(n, limit int) int {
	if n <= limit {
		return n
	}
	size := limit
	for size > 1 && n%size == 1 {
		size--
	}
	return size
}
