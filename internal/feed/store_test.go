package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	require.NoError(t, os.WriteFile(path, []byte("<feed><entry>"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrCorruptFeed)
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	t1 := time.Date(2023, 10, 5, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	original := Feed{
		Title:   "Commits & friends",
		URI:     "http://example.com/feed.xml",
		Updated: t2.Add(time.Minute),
		Entries: []Entry{
			{
				ID:          "m2",
				Title:       "Second <subject>",
				Published:   t2,
				Updated:     t2,
				AuthorName:  "Bob",
				AuthorEmail: "bob@example.com",
				Content:     "<p>html & more</p>",
				ContentType: "html",
			},
			{
				ID:          "m1",
				Title:       "First",
				Published:   t1,
				Updated:     t1,
				AuthorName:  "alice@example.com",
				AuthorEmail: "alice@example.com",
				Content:     "plain body",
				ContentType: "text",
			},
		},
	}

	require.NoError(t, Write(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Title, loaded.Title)
	assert.Equal(t, original.URI, loaded.URI)
	assert.True(t, original.Updated.Equal(loaded.Updated))
	require.Len(t, loaded.Entries, 2)

	for i, want := range original.Entries {
		got := loaded.Entries[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Title, got.Title)
		assert.True(t, want.Published.Equal(got.Published))
		assert.True(t, want.Updated.Equal(got.Updated))
		assert.Equal(t, want.AuthorName, got.AuthorName)
		assert.Equal(t, want.AuthorEmail, got.AuthorEmail)
		assert.Equal(t, want.Content, got.Content)
		assert.Equal(t, want.ContentType, got.ContentType)
	}
}

// A rerun that accepts nothing must rewrite the document byte for byte.
func TestRewriteAfterNoOpMergeIsIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	t1 := time.Date(2023, 10, 5, 10, 0, 0, 0, time.UTC)

	original := Feed{
		Title:   "Stable",
		URI:     "http://example.com/stable.xml",
		Updated: t1.Add(time.Hour),
		Entries: []Entry{
			{
				ID:          "m1",
				Title:       "One",
				Published:   t1,
				Updated:     t1,
				AuthorName:  "Alice",
				AuthorEmail: "alice@example.com",
				Content:     "body",
				ContentType: "text",
			},
		},
	}
	require.NoError(t, Write(path, original))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)

	merged, accepted := Merge(loaded, original.Entries, MergeOptions{MaxEntries: 10}, t1.Add(48*time.Hour))
	assert.Equal(t, 0, accepted)

	require.NoError(t, Write(path, merged))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
