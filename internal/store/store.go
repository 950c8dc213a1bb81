// Package store keeps the per-entity media records of one family and
// persists them as a flat JSON cache file.
package store

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/lepinkainen/coverfetch/internal/fileutil"
)

// Record is the stored outcome for one entity. MediaURL and Source are nil
// when no source produced a result.
type Record struct {
	Day      int
	Title    string
	Creator  string
	MediaURL *string
	Source   *string
}

// HasMedia reports whether the record carries a URL.
func (r Record) HasMedia() bool {
	return r.MediaURL != nil && *r.MediaURL != ""
}

// SourceTag returns the source or "" when absent.
func (r Record) SourceTag() string {
	if r.Source == nil {
		return ""
	}
	return *r.Source
}

// Stats summarizes a run. The counts in Sources cover the input keys.
type Stats struct {
	Total         int
	WithMedia     int
	WithoutMedia  int
	Percentage    int
	NewlyFetched  int
	AlreadyCached int
	Failed        int
	Sources       map[string]int
}

// RunCounts are the per-run counters maintained by the batch loop.
type RunCounts struct {
	NewlyFetched  int
	AlreadyCached int
	Failed        int
}

// Store is the in-memory cache of one family. It is not safe for concurrent
// use; the batch loop owns it.
type Store struct {
	LastUpdated time.Time
	Stats       Stats

	layout    Layout
	records   map[string]Record
	preferred string
	now       func() time.Time
}

// New creates an empty store.
func New(layout Layout) *Store {
	return &Store{
		layout:  layout,
		records: make(map[string]Record),
		now:     time.Now,
	}
}

// Load reads the cache file at path. A missing or unparsable file yields an
// empty store; the condition is logged but never returned.
func Load(fs afero.Fs, path string, layout Layout) *Store {
	s := New(layout)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		slog.Info("No existing cache, starting fresh", "path", path)
		return s
	}

	if err := s.UnmarshalJSON(data); err != nil {
		slog.Warn("Cache file unreadable, starting fresh", "path", path, "error", err)
		return New(layout)
	}

	slog.Info("Loaded cache", "path", path, "records", len(s.records))
	return s
}

// Layout returns the family layout of the store.
func (s *Store) Layout() Layout {
	return s.layout
}

// SetClock replaces the clock used to stamp LastUpdated.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SetPreferredSource turns on strict skipping: only records resolved by tag
// are final. An empty tag skips every record that has media.
func (s *Store) SetPreferredSource(tag string) {
	s.preferred = tag
}

// Has reports whether a record exists for key.
func (s *Store) Has(key string) bool {
	_, ok := s.records[key]
	return ok
}

// Get returns the record for key.
func (s *Store) Get(key string) (Record, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Put stores r under key, replacing any existing record.
func (s *Store) Put(key string, r Record) {
	s.records[key] = r
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Keys returns all record keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ShouldSkip reports whether key already has a final record and needs no
// lookup.
func (s *Store) ShouldSkip(key string) bool {
	r, ok := s.records[key]
	if !ok || !r.HasMedia() {
		return false
	}
	if s.preferred == "" {
		return true
	}
	return r.SourceTag() == s.preferred
}

// Summarize recomputes Stats over the given input keys and stores them.
// Every input entity counts, so entities sharing a key share its outcome.
func (s *Store) Summarize(keys []string, run RunCounts) Stats {
	stats := Stats{
		Total:         len(keys),
		NewlyFetched:  run.NewlyFetched,
		AlreadyCached: run.AlreadyCached,
		Failed:        run.Failed,
		Sources:       make(map[string]int),
	}

	for _, key := range keys {
		r, ok := s.records[key]
		if !ok || !r.HasMedia() {
			continue
		}
		stats.WithMedia++
		if tag := r.SourceTag(); tag != "" {
			stats.Sources[tag]++
		}
	}

	stats.WithoutMedia = stats.Total - stats.WithMedia
	if stats.Total > 0 {
		stats.Percentage = int(math.Round(100 * float64(stats.WithMedia) / float64(stats.Total)))
	}

	s.Stats = stats
	return stats
}

// Save stamps LastUpdated and writes the store to path atomically.
func (s *Store) Save(fs afero.Fs, path string) error {
	s.LastUpdated = s.now().UTC()
	return fileutil.WriteJSONFile(fs, s, path)
}

// StringPtr returns a pointer to v, or nil for an empty string.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
