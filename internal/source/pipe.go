package source

import (
	"fmt"
	"io"
)

// PipeSource reads a single message from a stream, typically stdin
// when the program runs from a mail-delivery rule.
type PipeSource struct {
	r io.Reader
}

// NewPipe creates a source that reads one message from r.
func NewPipe(r io.Reader) *PipeSource {
	return &PipeSource{r: r}
}

func (s *PipeSource) Messages() ([]RawMessage, error) {
	raw, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("read piped message: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return []RawMessage{{Raw: raw}}, nil
}

func (s *PipeSource) Close() error {
	return nil
}
