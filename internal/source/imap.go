package source

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// IMAPSource fetches messages over IMAP/IMAPS.
type IMAPSource struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	mailbox  string
	limit    int
	logger   *slog.Logger
}

// NewIMAP creates a new IMAP source. A zero port selects the protocol
// default. limit bounds the number of messages fetched per run; 0
// means no bound.
func NewIMAP(host string, port int, username, password string, useTLS bool, mailbox string, limit int, logger *slog.Logger) *IMAPSource {
	if port == 0 {
		if useTLS {
			port = 993
		} else {
			port = 143
		}
	}
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPSource{
		host:     host,
		port:     port,
		username: username,
		password: password,
		useTLS:   useTLS,
		mailbox:  mailbox,
		limit:    limit,
		logger:   logger,
	}
}

func (s *IMAPSource) Messages() ([]RawMessage, error) {
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))

	var client *imapclient.Client
	var err error

	if s.useTLS {
		client, err = imapclient.DialTLS(addr, &imapclient.Options{
			TLSConfig: &tls.Config{ServerName: s.host},
		})
	} else {
		client, err = imapclient.DialInsecure(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("imap connect %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.Login(s.username, s.password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login %s: %w", s.username, err)
	}
	defer client.Logout()

	if _, err := client.Select(s.mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", s.mailbox, err)
	}

	searchData, err := client.Search(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}

	seqNums := searchData.AllSeqNums()
	if len(seqNums) == 0 {
		s.logger.Info("mailbox is empty", "mailbox", s.mailbox)
		return nil, nil
	}

	// Sequence numbers ascend with delivery order; keep only the most
	// recent ones when a limit is set.
	if s.limit > 0 && len(seqNums) > s.limit {
		seqNums = seqNums[len(seqNums)-s.limit:]
	}

	s.logger.Info("found messages", "mailbox", s.mailbox, "count", len(seqNums))

	seqSet := imap.SeqSetNum(seqNums...)
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOptions := &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	buffers, err := client.Fetch(seqSet, fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	var msgs []RawMessage
	// Collect returns ascending sequence numbers; walk backwards for
	// newest first.
	for i := len(buffers) - 1; i >= 0; i-- {
		buf := buffers[i]

		content := buf.FindBodySection(bodySection)
		if len(content) == 0 {
			s.logger.Warn("empty body, skipping", "seq", buf.SeqNum)
			continue
		}

		msg := RawMessage{Raw: content}
		if buf.Envelope != nil {
			msg.ID = buf.Envelope.MessageID
			msg.Date = buf.Envelope.Date
		}
		msgs = append(msgs, msg)
	}

	s.logger.Info("retrieved messages", "count", len(msgs))
	return msgs, nil
}

func (s *IMAPSource) Close() error {
	return nil
}
