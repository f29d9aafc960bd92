package source

import (
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"strconv"
	"strings"
)

// NNTPSource fetches articles from a newsgroup over NNTP.
type NNTPSource struct {
	host     string
	port     int
	group    string
	username string
	password string
	limit    int
	logger   *slog.Logger
}

// NewNNTP creates a new NNTP source for the given group. Credentials
// are optional; most public news servers accept anonymous readers.
// limit bounds the number of articles fetched per run; 0 means no bound.
func NewNNTP(host string, port int, group, username, password string, limit int, logger *slog.Logger) *NNTPSource {
	if port == 0 {
		port = 119
	}
	return &NNTPSource{
		host:     host,
		port:     port,
		group:    group,
		username: username,
		password: password,
		limit:    limit,
		logger:   logger,
	}
}

func (s *NNTPSource) Messages() ([]RawMessage, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	conn, err := textproto.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nntp connect %s: %w", addr, err)
	}
	defer conn.Close()

	if _, _, err := conn.ReadCodeLine(20); err != nil {
		return nil, fmt.Errorf("nntp greeting: %w", err)
	}

	if s.username != "" {
		if err := s.authenticate(conn); err != nil {
			return nil, err
		}
	}

	first, last, err := s.selectGroup(conn)
	if err != nil {
		return nil, err
	}
	s.logger.Info("selected group", "group", s.group, "first", first, "last", last)

	var msgs []RawMessage
	for n := last; n >= first; n-- {
		if s.limit > 0 && len(msgs) >= s.limit {
			break
		}
		raw, err := s.article(conn, n)
		if err != nil {
			// Article numbers are sparse; expired or cancelled
			// articles answer with an error code.
			s.logger.Debug("article unavailable", "number", n, "error", err)
			continue
		}
		msgs = append(msgs, RawMessage{
			ID:  fmt.Sprintf("nntp-%s-%d", s.group, n),
			Raw: raw,
		})
	}

	s.logger.Info("retrieved articles", "group", s.group, "count", len(msgs))

	if err := conn.PrintfLine("QUIT"); err == nil {
		conn.ReadCodeLine(205)
	}
	return msgs, nil
}

func (s *NNTPSource) Close() error {
	return nil
}

func (s *NNTPSource) authenticate(conn *textproto.Conn) error {
	if err := conn.PrintfLine("AUTHINFO USER %s", s.username); err != nil {
		return fmt.Errorf("nntp authinfo user: %w", err)
	}
	code, _, err := conn.ReadCodeLine(0)
	if err != nil {
		return fmt.Errorf("nntp authinfo user: %w", err)
	}
	if code == 381 {
		if err := conn.PrintfLine("AUTHINFO PASS %s", s.password); err != nil {
			return fmt.Errorf("nntp authinfo pass: %w", err)
		}
		code, _, err = conn.ReadCodeLine(0)
		if err != nil {
			return fmt.Errorf("nntp authinfo pass: %w", err)
		}
	}
	if code != 281 {
		return fmt.Errorf("nntp auth %s: unexpected response code %d", s.username, code)
	}
	return nil
}

func (s *NNTPSource) selectGroup(conn *textproto.Conn) (first, last int, err error) {
	if err := conn.PrintfLine("GROUP %s", s.group); err != nil {
		return 0, 0, fmt.Errorf("nntp group %s: %w", s.group, err)
	}
	_, msg, err := conn.ReadCodeLine(211)
	if err != nil {
		return 0, 0, fmt.Errorf("nntp group %s: %w", s.group, err)
	}

	// Response: "<count> <first> <last> <group>".
	fields := strings.Fields(msg)
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("nntp group %s: malformed response %q", s.group, msg)
	}
	first, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("nntp group %s: malformed response %q", s.group, msg)
	}
	last, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, fmt.Errorf("nntp group %s: malformed response %q", s.group, msg)
	}
	return first, last, nil
}

func (s *NNTPSource) article(conn *textproto.Conn, n int) ([]byte, error) {
	if err := conn.PrintfLine("ARTICLE %d", n); err != nil {
		return nil, err
	}
	if _, _, err := conn.ReadCodeLine(220); err != nil {
		return nil, err
	}
	return conn.ReadDotBytes()
}
