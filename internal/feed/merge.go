package feed

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// MergeOptions is the retention policy applied after each merge.
type MergeOptions struct {
	// MaxEntries bounds the number of retained entries; 0 keeps all.
	MaxEntries int
	// MaxAge drops entries older than now-MaxAge; 0 keeps all.
	MaxAge time.Duration
}

// Merge combines newly built entries with a previously persisted feed
// and returns the merged feed plus the number of entries accepted.
//
// Entries whose identifier is already present are skipped, so
// re-running against the same mailbox is idempotent. The combined
// entries are ordered by published date descending, ties broken by
// identifier, and then trimmed per the retention policy. Feed.Updated
// moves to now only when at least one entry was accepted; a run that
// adds nothing leaves the feed metadata untouched.
//
// Existing entries are never modified: a changed source message does
// not alter its stored entry.
func Merge(existing Feed, entries []Entry, opts MergeOptions, now time.Time) (Feed, int) {
	seen := lo.SliceToMap(existing.Entries, func(e Entry) (string, struct{}) {
		return e.ID, struct{}{}
	})

	merged := slices.Clone(existing.Entries)
	accepted := 0
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
		accepted++
	}

	slices.SortStableFunc(merged, func(a, b Entry) int {
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if opts.MaxAge > 0 {
		cutoff := now.Add(-opts.MaxAge)
		merged = lo.Filter(merged, func(e Entry, _ int) bool {
			return !e.Published.Before(cutoff)
		})
	}
	if opts.MaxEntries > 0 && len(merged) > opts.MaxEntries {
		merged = merged[:opts.MaxEntries]
	}

	out := Feed{
		Title:   existing.Title,
		URI:     existing.URI,
		Updated: existing.Updated,
		Entries: merged,
	}
	if accepted > 0 {
		out.Updated = now
	}
	return out, accepted
}
