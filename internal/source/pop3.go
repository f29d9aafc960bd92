package source

import (
	"fmt"
	"log/slog"
	"net"

	pop3client "github.com/knadh/go-pop3"
)

// POP3Source fetches messages over POP3/POP3S.
type POP3Source struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	limit    int
	logger   *slog.Logger
}

// NewPOP3 creates a new POP3 source. A zero port selects the protocol
// default. limit bounds the number of messages fetched per run; 0
// means no bound.
func NewPOP3(host string, port int, username, password string, useTLS bool, limit int, logger *slog.Logger) *POP3Source {
	if port == 0 {
		if useTLS {
			port = 995
		} else {
			port = 110
		}
	}
	return &POP3Source{
		host:     host,
		port:     port,
		username: username,
		password: password,
		useTLS:   useTLS,
		limit:    limit,
		logger:   logger,
	}
}

func (s *POP3Source) Messages() ([]RawMessage, error) {
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))

	opt := pop3client.Opt{
		Host:       s.host,
		Port:       s.port,
		TLSEnabled: s.useTLS,
	}

	client := pop3client.New(opt)
	conn, err := client.NewConn()
	if err != nil {
		return nil, fmt.Errorf("pop3 connect %s: %w", addr, err)
	}
	defer conn.Quit()

	if err := conn.Auth(s.username, s.password); err != nil {
		return nil, fmt.Errorf("pop3 auth %s: %w", s.username, err)
	}

	list, err := conn.List(0)
	if err != nil {
		return nil, fmt.Errorf("pop3 list: %w", err)
	}

	s.logger.Info("fetched message list", "count", len(list))

	var msgs []RawMessage
	// The LIST response is oldest first; walk it backwards so the
	// newest messages come out first.
	for i := len(list) - 1; i >= 0; i-- {
		if s.limit > 0 && len(msgs) >= s.limit {
			break
		}
		item := list[i]
		rawBuf, err := conn.RetrRaw(item.ID)
		if err != nil {
			s.logger.Warn("pop3 retrieve failed", "msg_id", item.ID, "error", err)
			continue
		}

		var nativeID string
		if item.UID != "" {
			nativeID = fmt.Sprintf("pop3-uid-%s-%s", item.UID, s.username)
		}
		msgs = append(msgs, RawMessage{
			ID:  nativeID,
			Raw: rawBuf.Bytes(),
		})
	}

	s.logger.Info("retrieved messages", "count", len(msgs))
	return msgs, nil
}

func (s *POP3Source) Close() error {
	return nil
}
