package feed

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/emersion/go-message/mail"

	"github.com/tracyhatemice/mailfeed/internal/source"

	_ "github.com/emersion/go-message/charset"
)

// subjectTagPattern matches mailing-list style tags like "[users] " in
// subject lines.
var subjectTagPattern = regexp.MustCompile(`\[[a-zA-Z0-9:_. -]*\]\s*`)

// Builder converts raw messages into feed entries. It performs no I/O;
// the same message bytes always produce the same entry (apart from the
// Updated stamp, which records when the entry entered the feed).
type Builder struct {
	// StripSubjectTags removes mailing-list tags from entry titles.
	StripSubjectTags bool
}

// Build derives one entry from one raw message. It returns a
// *MalformedMessageError when the message lacks the fields needed for
// a stable identifier or a publication date.
func (b *Builder) Build(msg source.RawMessage, now time.Time) (Entry, error) {
	mr, err := mail.CreateReader(bytes.NewReader(msg.Raw))
	if err != nil {
		return Entry{}, &MalformedMessageError{Reason: "unparseable message: " + err.Error()}
	}
	defer mr.Close()
	hdr := mr.Header

	id, err := deriveID(hdr, msg)
	if err != nil {
		return Entry{}, err
	}

	published, err := derivePublished(hdr, msg)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        id,
		Title:     b.deriveTitle(hdr),
		Published: published,
		Updated:   now,
	}
	entry.AuthorName, entry.AuthorEmail = deriveAuthor(hdr)
	entry.Content, entry.ContentType = deriveContent(mr)
	if entry.Content == "" {
		// A message without a usable text part still gets an entry;
		// the title stands in for the body.
		entry.Content = entry.Title
		entry.ContentType = "text"
	}
	return entry, nil
}

// deriveID picks the entry identifier: the Message-ID header when
// present, then the transport-native identifier, then an md5 digest
// over the From, Subject and Date header values. The digest fallback
// is deterministic so re-delivered messages dedupe across runs.
func deriveID(hdr mail.Header, msg source.RawMessage) (string, error) {
	if mid, err := hdr.MessageID(); err == nil && mid != "" {
		return mid, nil
	}
	if msg.ID != "" {
		return msg.ID, nil
	}

	from := hdr.Get("From")
	subject := hdr.Get("Subject")
	date := hdr.Get("Date")
	if from == "" && subject == "" && date == "" {
		return "", &MalformedMessageError{Reason: "no Message-ID and no headers to derive an identifier from"}
	}
	sum := md5.Sum([]byte(from + subject + date))
	return hex.EncodeToString(sum[:]), nil
}

func derivePublished(hdr mail.Header, msg source.RawMessage) (time.Time, error) {
	if date, err := hdr.Date(); err == nil && !date.IsZero() {
		return date, nil
	}
	// Some senders produce Date headers outside RFC 5322; try a
	// lenient parse before giving up.
	if raw := hdr.Get("Date"); raw != "" {
		if date, err := dateparse.ParseAny(raw); err == nil {
			return date, nil
		}
	}
	if !msg.Date.IsZero() {
		return msg.Date, nil
	}
	return time.Time{}, &MalformedMessageError{Reason: "no usable date"}
}

func (b *Builder) deriveTitle(hdr mail.Header) string {
	title, err := hdr.Subject()
	if err != nil || title == "" {
		title = hdr.Get("Subject")
	}
	if b.StripSubjectTags {
		title = subjectTagPattern.ReplaceAllString(title, "")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "(No Subject)"
	}
	return title
}

func deriveAuthor(hdr mail.Header) (name, email string) {
	addrs, err := hdr.AddressList("From")
	if err != nil || len(addrs) == 0 {
		// Keep an unparseable From verbatim rather than dropping the
		// attribution entirely.
		if raw := hdr.Get("From"); raw != "" {
			return raw, ""
		}
		return "Anonymous", ""
	}
	addr := addrs[0]
	if addr.Name != "" {
		return addr.Name, addr.Address
	}
	return addr.Address, addr.Address
}

// deriveContent walks the MIME parts and returns the preferred body:
// the first text/html part when one exists, otherwise the first
// text/plain part.
func deriveContent(mr *mail.Reader) (content, contentType string) {
	var plain, html string
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, err := inline.ContentType()
		if err != nil {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil || len(body) == 0 {
			continue
		}
		switch ct {
		case "text/plain":
			if plain == "" {
				plain = string(body)
			}
		case "text/html":
			if html == "" {
				html = string(body)
			}
		}
		if html != "" {
			break
		}
	}
	if html != "" {
		return html, "html"
	}
	if plain != "" {
		return plain, "text"
	}
	return "", ""
}

// IsMalformed reports whether err is a per-message failure that should
// skip the message instead of aborting the run.
func IsMalformed(err error) bool {
	var m *MalformedMessageError
	return errors.As(err, &m)
}
