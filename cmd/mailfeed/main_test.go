package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracyhatemice/mailfeed/internal/config"
	"github.com/tracyhatemice/mailfeed/internal/feed"
)

func TestApplyFeedMetadataWarnsOnMissingURI(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	f := feed.Feed{}
	applyFeedMetadata(&f, config.FeedConfig{Path: "out/feed.xml", Title: "T"}, logger)

	assert.Equal(t, "http://example.com/feed.xml", f.URI)
	assert.Contains(t, buf.String(), "feed URI missing")
}

func TestApplyFeedMetadataSilentWithURI(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	f := feed.Feed{}
	applyFeedMetadata(&f, config.FeedConfig{
		Path:  "out/feed.xml",
		Title: "T",
		URI:   "http://example.com/commits.xml",
	}, logger)

	assert.Equal(t, "http://example.com/commits.xml", f.URI)
	assert.Empty(t, buf.String())
}
