package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

const (
	generatorName    = "mailfeed"
	generatorVersion = "0.9.0"
	generatorURI     = "https://github.com/tracyhatemice/mailfeed"
)

// Write serializes the feed as an Atom document and atomically
// replaces the file at path, so a crash mid-write never leaves a
// half-written feed behind.
func Write(path string, f Feed) error {
	data := Render(f)
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write feed %s: %w", path, err)
	}
	return nil
}

// Render produces the Atom 1.0 document for the feed.
func Render(f Feed) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n")

	writeElement(&buf, "id", f.URI, 2)
	writeElement(&buf, "title", f.Title, 2)
	buf.WriteString(fmt.Sprintf("  <link rel=\"self\" href=\"%s\"/>\n", html.EscapeString(f.URI)))
	writeElement(&buf, "updated", f.Updated.Format(time.RFC3339), 2)
	buf.WriteString(fmt.Sprintf("  <generator uri=\"%s\" version=\"%s\">%s</generator>\n",
		html.EscapeString(generatorURI), generatorVersion, generatorName))

	for _, e := range f.Entries {
		writeEntry(&buf, e)
	}

	buf.WriteString("</feed>\n")
	return buf.Bytes()
}

func writeEntry(buf *bytes.Buffer, e Entry) {
	buf.WriteString("  <entry>\n")
	writeElement(buf, "id", e.ID, 4)
	writeElement(buf, "title", e.Title, 4)

	buf.WriteString("    <author>\n")
	writeElement(buf, "name", e.AuthorName, 6)
	if e.AuthorEmail != "" {
		writeElement(buf, "email", e.AuthorEmail, 6)
	}
	buf.WriteString("    </author>\n")

	writeElement(buf, "published", e.Published.Format(time.RFC3339), 4)
	updated := e.Updated
	if updated.IsZero() {
		updated = e.Published
	}
	writeElement(buf, "updated", updated.Format(time.RFC3339), 4)

	contentType := e.ContentType
	if contentType == "" {
		contentType = "text"
	}
	buf.WriteString(fmt.Sprintf("    <content type=\"%s\">", contentType))
	xml.EscapeText(buf, []byte(e.Content))
	buf.WriteString("</content>\n")

	buf.WriteString("  </entry>\n")
}

func writeElement(buf *bytes.Buffer, tag, value string, indent int) {
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<" + tag + ">")
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("</" + tag + ">\n")
}
