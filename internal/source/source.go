// Package source retrieves raw mail messages from a configured
// transport. Each transport implements Source; the rest of the program
// never inspects which variant is active.
package source

import "time"

// RawMessage is one fetched message, still in wire form.
type RawMessage struct {
	ID   string    // native identifier (Message-ID, UID, article number), may be empty
	Date time.Time // transport-supplied date, may be zero
	Raw  []byte    // RFC 5322 message bytes
}

// Source yields a bounded batch of messages from one transport.
type Source interface {
	// Messages returns the batch, newest first. The returned slice is
	// finite; an empty slice with a nil error means nothing to fetch.
	Messages() ([]RawMessage, error)

	// Close releases any resources held by the source.
	Close() error
}
