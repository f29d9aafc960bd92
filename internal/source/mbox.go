package source

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/emersion/go-mbox"
)

// MboxSource reads messages from a local mbox file.
type MboxSource struct {
	path   string
	logger *slog.Logger
}

// NewMbox creates a source reading the mbox file at path.
func NewMbox(path string, logger *slog.Logger) *MboxSource {
	return &MboxSource{path: path, logger: logger}
}

func (s *MboxSource) Messages() ([]RawMessage, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open mbox %s: %w", s.path, err)
	}
	defer f.Close()

	var msgs []RawMessage
	mr := mbox.NewReader(f)
	for {
		r, err := mr.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read mbox %s: %w", s.path, err)
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read mbox message: %w", err)
		}
		msgs = append(msgs, RawMessage{Raw: raw})
	}

	s.logger.Info("read mbox", "path", s.path, "count", len(msgs))

	// Mbox files append chronologically; report newest first.
	reverse(msgs)
	return msgs, nil
}

func (s *MboxSource) Close() error {
	return nil
}

func reverse(msgs []RawMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
