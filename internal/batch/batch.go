// Package batch runs the sequential resolve loop over an entity list and
// persists the results.
package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/semaphore"

	"github.com/lepinkainen/coverfetch/internal/entity"
	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/lepinkainen/coverfetch/internal/metrics"
	"github.com/lepinkainen/coverfetch/internal/store"
)

// DefaultDelay is the pause after every entity that needed a lookup.
const DefaultDelay = 200 * time.Millisecond

const progressEvery = 50

// Resolver resolves one query; *media.Pipeline implements it.
type Resolver interface {
	Resolve(ctx context.Context, q media.Query) (media.Result, bool)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner owns the store for the duration of a run.
type Runner struct {
	store    *store.Store
	resolver Resolver
	fs       afero.Fs
	path     string

	delay           time.Duration
	sleep           SleepFunc
	checkpointEvery int
	metrics         *metrics.Metrics
	now             func() time.Time

	gate *semaphore.Weighted
}

// Option configures a Runner.
type Option func(*Runner)

// WithDelay sets the pause after each looked-up entity.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithSleep replaces the pause implementation.
func WithSleep(fn SleepFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// WithCheckpointEvery saves the store after every n looked-up entities.
// 0 saves only at the end of the run.
func WithCheckpointEvery(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.checkpointEvery = n
		}
	}
}

// WithMetrics records entity outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// New creates a Runner that resolves into s and saves it to path on fs.
func New(s *store.Store, resolver Resolver, fs afero.Fs, path string, opts ...Option) *Runner {
	r := &Runner{
		store:    s,
		resolver: resolver,
		fs:       fs,
		path:     path,
		delay:    DefaultDelay,
		sleep:    sleepContext,
		now:      time.Now,
		gate:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves every entity that has no final record, then summarizes and
// saves the store. Per-entity failures are recorded, never returned; the only
// error is a failed save. A cancelled context ends the loop early and the
// progress made so far is still saved.
//
// Concurrent calls on one Runner are serialized: each waits for the run in
// progress to finish. A call whose context ends while waiting returns the
// context error without touching the store.
func (r *Runner) Run(ctx context.Context, entities []entity.Entity, keyFn entity.KeyFunc) (store.Stats, error) {
	if !r.gate.TryAcquire(1) {
		slog.Debug("Waiting for the run in progress", "family", r.store.Layout().Family)
		if err := r.gate.Acquire(ctx, 1); err != nil {
			return store.Stats{}, err
		}
	}
	defer r.gate.Release(1)

	family := r.store.Layout().Family
	total := len(entities)
	keys := make([]string, 0, total)
	owners := make(map[string]entity.Entity, total)

	var counts store.RunCounts
	resolvedSinceSave := 0

	for i, e := range entities {
		key := keyFn(e)
		keys = append(keys, key)
		if prev, dup := owners[key]; dup {
			slog.Warn("Entities share a cache key",
				"key", key, "first", prev.Title, "first_index", prev.Index, "second", e.Title, "second_index", e.Index)
		} else {
			owners[key] = e
		}

		if r.store.ShouldSkip(key) {
			counts.AlreadyCached++
			r.metrics.ObserveEntity(family, metrics.OutcomeCached, "", 0)
			if i%progressEvery == 0 {
				slog.Info("Progress", "done", i, "total", total,
					"cached", counts.AlreadyCached, "updated", counts.NewlyFetched)
			}
			continue
		}

		res, ok, done := r.resolveOne(ctx, i, total, e)
		if done {
			break
		}

		record := store.Record{Day: e.Index, Title: e.Title, Creator: e.Creator}
		if ok {
			record.MediaURL = store.StringPtr(res.URL)
			record.Source = store.StringPtr(res.Source)
			counts.NewlyFetched++
		} else {
			counts.Failed++
		}
		r.store.Put(key, record)

		resolvedSinceSave++
		if r.checkpointEvery > 0 && resolvedSinceSave >= r.checkpointEvery {
			r.checkpoint(keys, counts)
			resolvedSinceSave = 0
		}

		if err := r.sleep(ctx, r.delay); err != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		slog.Warn("Run interrupted, saving progress", "processed", len(keys), "total", total, "error", err)
		// Entities not reached keep their previous record, if any.
		for _, e := range entities[len(keys):] {
			keys = append(keys, keyFn(e))
		}
	}

	stats := r.store.Summarize(keys, counts)
	r.metrics.SetCoverage(family, stats.Percentage)

	if err := r.store.Save(r.fs, r.path); err != nil {
		slog.Error("Failed to save cache", "path", r.path, "error", err)
		return stats, err
	}
	slog.Info("Cache saved", "path", r.path, "records", r.store.Len())

	return stats, nil
}

// resolveOne looks up a single entity. done is true when ctx ended during
// the lookup; the outcome must then be discarded.
func (r *Runner) resolveOne(ctx context.Context, i, total int, e entity.Entity) (media.Result, bool, bool) {
	family := r.store.Layout().Family
	slog.Info("Resolving", "n", i+1, "total", total, "title", e.Title, "creator", e.Creator)

	start := r.now()
	res, ok := r.resolver.Resolve(ctx, media.Query{Title: e.Title, Creator: e.Creator})
	if ctx.Err() != nil {
		return media.Result{}, false, true
	}
	took := r.now().Sub(start)

	if ok {
		slog.Info("Found media", "title", e.Title, "source", res.Source)
		r.metrics.ObserveEntity(family, metrics.OutcomeFetched, res.Source, took)
	} else {
		slog.Info("No media found", "title", e.Title)
		r.metrics.ObserveEntity(family, metrics.OutcomeFailed, "", took)
	}
	return res, ok, false
}

func (r *Runner) checkpoint(keys []string, counts store.RunCounts) {
	r.store.Summarize(keys, counts)
	if err := r.store.Save(r.fs, r.path); err != nil {
		slog.Warn("Checkpoint save failed", "path", r.path, "error", err)
		return
	}
	slog.Debug("Checkpoint saved", "path", r.path, "records", r.store.Len())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
