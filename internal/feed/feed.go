// Package feed implements the incremental feed-merge core: building
// entries from raw mail messages, merging them into a previously
// persisted Atom document, and reading/writing that document.
package feed

import (
	"errors"
	"fmt"
	"time"
)

// Entry is one feed item derived from one source message.
// Entries are immutable once merged into a feed.
type Entry struct {
	ID          string    // stable identifier, unique within a feed
	Title       string    // decoded subject, never empty
	Published   time.Time // message date; the ordering key
	Updated     time.Time // when the entry was added to the feed
	AuthorName  string
	AuthorEmail string
	Content     string
	ContentType string // "text" or "html"
}

// Feed is the persisted document: feed-level metadata plus entries
// ordered by published date, newest first.
type Feed struct {
	Title   string
	URI     string
	Updated time.Time
	Entries []Entry
}

// ErrNotFound is returned by Load when no feed document exists yet at
// the given path. Callers start from an empty feed in that case.
var ErrNotFound = errors.New("feed document not found")

// ErrCorruptFeed is returned by Load when a feed document exists but
// cannot be parsed. It is fatal: overwriting would discard history.
var ErrCorruptFeed = errors.New("feed document exists but cannot be parsed")

// MalformedMessageError reports a message that lacks the fields needed
// to derive an entry. The message is skipped; the run continues.
type MalformedMessageError struct {
	Reason string
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("malformed message: %s", e.Reason)
}
