package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v4"
)

// Modes accepted for source.mode.
const (
	ModePipe    = "pipe"
	ModeMbox    = "mbox"
	ModeMaildir = "maildir"
	ModePOP3    = "pop3"
	ModeIMAP    = "imap"
	ModeNNTP    = "nntp"
)

// Config is the top-level application configuration.
type Config struct {
	LogLevel string     `yaml:"log_level"`
	Feed     FeedConfig `yaml:"feed"`
	Source   Source     `yaml:"source"`
}

// FeedConfig describes the output feed document.
type FeedConfig struct {
	Path             string `yaml:"path"`
	Title            string `yaml:"title"`
	URI              string `yaml:"uri"`
	MaxEntries       int    `yaml:"max_entries"`
	MaxAgeMinutes    int    `yaml:"max_age_minutes"`
	StripSubjectTags bool   `yaml:"strip_subject_tags"`
}

// Source describes where messages are retrieved from.
type Source struct {
	Mode     string `yaml:"mode"` // pipe, mbox, maildir, pop3, imap, nntp
	File     string `yaml:"file"` // mbox file or maildir directory
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseTLS   bool   `yaml:"use_tls"`
	Mailbox  string `yaml:"mailbox"` // imap, defaults to INBOX
	Group    string `yaml:"group"`   // nntp
}

// GetTitle returns the feed title, with a default.
func (f *FeedConfig) GetTitle() string {
	if f.Title == "" {
		return "Mail feed"
	}
	return f.Title
}

// GetURI returns the canonical feed URI, deriving one from the output
// path when none is configured.
func (f *FeedConfig) GetURI() string {
	if f.URI == "" {
		return "http://example.com/" + filepath.Base(f.Path)
	}
	return f.URI
}

// MaxAge returns the entry age bound as a duration, 0 when unbounded.
func (f *FeedConfig) MaxAge() time.Duration {
	if f.MaxAgeMinutes <= 0 {
		return 0
	}
	return time.Duration(f.MaxAgeMinutes) * time.Minute
}

// GetMailbox returns the IMAP mailbox name, defaulting to "INBOX".
func (s *Source) GetMailbox() string {
	if s.Mailbox == "" {
		return "INBOX"
	}
	return s.Mailbox
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{
		LogLevel: "info",
		Feed: FeedConfig{
			MaxEntries: 10,
		},
		Source: Source{
			Mode: ModePipe,
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Feed.Path == "" {
		return fmt.Errorf("feed.path is required")
	}

	s := &c.Source
	switch s.Mode {
	case ModePipe:
	case ModeMbox, ModeMaildir:
		if s.File == "" {
			return fmt.Errorf("source.file is required for mode %s", s.Mode)
		}
	case ModePOP3, ModeIMAP:
		if s.Host == "" {
			return fmt.Errorf("source.host is required for mode %s", s.Mode)
		}
		if s.Username == "" {
			return fmt.Errorf("source.username is required for mode %s", s.Mode)
		}
		if s.Password == "" {
			return fmt.Errorf("source.password is required for mode %s", s.Mode)
		}
	case ModeNNTP:
		if s.Host == "" {
			return fmt.Errorf("source.host is required for mode %s", s.Mode)
		}
		if s.Group == "" {
			return fmt.Errorf("source.group is required for mode %s", s.Mode)
		}
	default:
		return fmt.Errorf("source.mode must be one of pipe, mbox, maildir, pop3, imap, nntp")
	}

	if c.Feed.MaxEntries < 0 {
		return fmt.Errorf("feed.max_entries must not be negative")
	}
	return nil
}
