package feed

import (
	"fmt"
	"os"

	"github.com/mmcdole/gofeed/atom"
)

// Load reads a previously written feed document. A missing file yields
// ErrNotFound so the caller can start from an empty feed; a file that
// exists but does not parse yields ErrCorruptFeed and must abort the
// run, since overwriting it would silently discard history.
func Load(path string) (Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Feed{}, ErrNotFound
		}
		return Feed{}, fmt.Errorf("open feed %s: %w", path, err)
	}
	defer f.Close()

	parser := &atom.Parser{}
	doc, err := parser.Parse(f)
	if err != nil {
		return Feed{}, fmt.Errorf("%w: %s: %v", ErrCorruptFeed, path, err)
	}

	out := Feed{
		Title: doc.Title,
		URI:   doc.ID,
	}
	if doc.UpdatedParsed != nil {
		out.Updated = *doc.UpdatedParsed
	}

	for _, entry := range doc.Entries {
		if entry == nil || entry.ID == "" {
			continue
		}
		e := Entry{
			ID:          entry.ID,
			Title:       entry.Title,
			Content:     entry.Summary,
			ContentType: "text",
		}
		if entry.Content != nil {
			e.Content = entry.Content.Value
			e.ContentType = entry.Content.Type
		}
		if entry.PublishedParsed != nil {
			e.Published = *entry.PublishedParsed
		}
		if entry.UpdatedParsed != nil {
			e.Updated = *entry.UpdatedParsed
		}
		if len(entry.Authors) > 0 && entry.Authors[0] != nil {
			e.AuthorName = entry.Authors[0].Name
			e.AuthorEmail = entry.Authors[0].Email
		}
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}
