package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tracyhatemice/mailfeed/internal/config"
	"github.com/tracyhatemice/mailfeed/internal/feed"
	"github.com/tracyhatemice/mailfeed/internal/source"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	feedPath := flag.String("feed", "", "feed output path (overrides feed.path from the configuration)")
	logLevel := flag.String("log-level", "", "log level (overrides log_level from the configuration)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *feedPath != "" {
		cfg.Feed.Path = *feedPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := setupLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run performs one fetch-merge-write cycle. Any error returned here is
// fatal and leaves the existing feed file untouched.
func run(cfg *config.Config, logger *slog.Logger) error {
	src, err := newSource(cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	logger.Info("retrieving messages", "mode", cfg.Source.Mode)
	msgs, err := src.Messages()
	if err != nil {
		return fmt.Errorf("retrieve messages: %w", err)
	}

	existing, err := feed.Load(cfg.Feed.Path)
	switch {
	case errors.Is(err, feed.ErrNotFound):
		logger.Info("no existing feed, starting empty", "path", cfg.Feed.Path)
		existing = feed.Feed{}
	case err != nil:
		return err
	default:
		logger.Info("loaded existing feed", "path", cfg.Feed.Path, "entries", len(existing.Entries))
	}

	applyFeedMetadata(&existing, cfg.Feed, logger)

	builder := feed.Builder{StripSubjectTags: cfg.Feed.StripSubjectTags}
	now := time.Now()

	var entries []feed.Entry
	for _, msg := range msgs {
		entry, err := builder.Build(msg, now)
		if err != nil {
			if feed.IsMalformed(err) {
				logger.Warn("skipping message", "msg_id", msg.ID, "error", err)
				continue
			}
			return err
		}
		entries = append(entries, entry)
	}

	merged, accepted := feed.Merge(existing, entries, feed.MergeOptions{
		MaxEntries: cfg.Feed.MaxEntries,
		MaxAge:     cfg.Feed.MaxAge(),
	}, now)

	if err := feed.Write(cfg.Feed.Path, merged); err != nil {
		return err
	}

	logger.Info("feed written",
		"path", cfg.Feed.Path,
		"fetched", len(msgs),
		"accepted", accepted,
		"entries", len(merged.Entries),
	)
	return nil
}

// applyFeedMetadata stamps the run-supplied feed metadata onto the
// loaded feed. A missing canonical URI is derived from the output path
// but worth a warning, since the URI doubles as the feed identifier.
func applyFeedMetadata(f *feed.Feed, fc config.FeedConfig, logger *slog.Logger) {
	f.Title = fc.GetTitle()
	if fc.URI == "" {
		logger.Warn("feed URI missing, deriving one from the output path", "uri", fc.GetURI())
	}
	f.URI = fc.GetURI()
}

func newSource(cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	s := cfg.Source
	// Fetching more than the retention bound is wasted work; the merge
	// would drop the surplus anyway.
	limit := cfg.Feed.MaxEntries

	switch s.Mode {
	case config.ModePipe:
		return source.NewPipe(os.Stdin), nil
	case config.ModeMbox:
		return source.NewMbox(s.File, logger), nil
	case config.ModeMaildir:
		return source.NewMaildir(s.File, logger), nil
	case config.ModePOP3:
		return source.NewPOP3(s.Host, s.Port, s.Username, s.Password, s.UseTLS, limit, logger), nil
	case config.ModeIMAP:
		return source.NewIMAP(s.Host, s.Port, s.Username, s.Password, s.UseTLS, s.GetMailbox(), limit, logger), nil
	case config.ModeNNTP:
		return source.NewNNTP(s.Host, s.Port, s.Group, s.Username, s.Password, limit, logger), nil
	default:
		return nil, fmt.Errorf("unsupported source mode: %s", s.Mode)
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
