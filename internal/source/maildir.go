package source

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/emersion/go-maildir"
)

// MaildirSource reads messages from a local maildir directory.
type MaildirSource struct {
	dir    maildir.Dir
	logger *slog.Logger
}

// NewMaildir creates a source reading the maildir at path.
func NewMaildir(path string, logger *slog.Logger) *MaildirSource {
	return &MaildirSource{dir: maildir.Dir(path), logger: logger}
}

func (s *MaildirSource) Messages() ([]RawMessage, error) {
	msgs, err := s.dir.Messages()
	if err != nil {
		return nil, fmt.Errorf("list maildir %s: %w", string(s.dir), err)
	}

	var out []RawMessage
	for _, m := range msgs {
		r, err := m.Open()
		if err != nil {
			s.logger.Warn("open maildir message failed", "key", m.Key(), "error", err)
			continue
		}
		raw, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			s.logger.Warn("read maildir message failed", "key", m.Key(), "error", err)
			continue
		}
		out = append(out, RawMessage{ID: m.Key(), Raw: raw})
	}

	s.logger.Info("read maildir", "path", string(s.dir), "count", len(out))

	// Listing order is arbitrary; keys start with the delivery
	// timestamp, so sorting them descending puts the newest first.
	slices.SortFunc(out, func(a, b RawMessage) int {
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *MaildirSource) Close() error {
	return nil
}
