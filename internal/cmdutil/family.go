package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/lepinkainen/coverfetch/internal/batch"
	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/config"
	"github.com/lepinkainen/coverfetch/internal/datastore"
	"github.com/lepinkainen/coverfetch/internal/entity"
	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/lepinkainen/coverfetch/internal/media/sources"
	"github.com/lepinkainen/coverfetch/internal/metrics"
	"github.com/lepinkainen/coverfetch/internal/report"
	"github.com/lepinkainen/coverfetch/internal/store"
)

// Family describes one kind of entity and the sources that resolve it.
type Family struct {
	Layout store.Layout
	Key    entity.KeyFunc
	// Sources builds the sources in priority order. opts carry the shared
	// response cache and request observer.
	Sources func(opts ...sources.Option) []media.Source
	// Strict re-resolves records that did not come from the top source.
	Strict bool
}

// Params are the per-invocation settings of a family command.
type Params struct {
	BaseCommandConfig
	Delay           time.Duration
	CheckpointEvery int
	MetricsFile     string
	Out             io.Writer
}

// RunFamily loads the entity list and the cache file, resolves what is
// missing and saves the result.
func RunFamily(ctx context.Context, fs afero.Fs, fam Family, p Params) error {
	p.ConfigKey = fam.Layout.Family
	if err := ResolvePaths(fs, &p.BaseCommandConfig); err != nil {
		return err
	}

	entities, err := entity.Load(fs, p.Input, fam.Layout.CreatorField)
	if err != nil {
		return err
	}
	slog.Info("Loaded entities", "family", fam.Layout.Family, "count", len(entities), "input", p.Input)

	m := metrics.New()
	opts := []sources.Option{sources.WithRequestObserver(m.ObserveRequest)}
	if config.ResponseCacheEnabled {
		c, err := cache.GetGlobalCache()
		if err != nil {
			slog.Warn("Response cache unavailable, continuing without it", "error", err)
		} else {
			opts = append(opts, sources.WithCache(c, config.CacheTTL()), sources.WithMissTTL(config.CacheMissTTL()))
		}
	}

	pipeline := media.NewPipeline(fam.Sources(opts...)...)
	priority := make([]string, 0, len(pipeline.Sources()))
	for _, src := range pipeline.Sources() {
		priority = append(priority, src.Name())
	}

	st := store.Load(fs, p.CacheFile, fam.Layout)
	if fam.Strict {
		st.SetPreferredSource(pipeline.TopSource())
	}

	delay := p.Delay
	if delay <= 0 {
		delay = config.Delay(fam.Layout.Family)
	}

	runner := batch.New(st, pipeline, fs, p.CacheFile,
		batch.WithDelay(delay),
		batch.WithCheckpointEvery(p.CheckpointEvery),
		batch.WithMetrics(m),
	)

	stats, err := runner.Run(ctx, entities, fam.Key)
	if err != nil {
		return fmt.Errorf("saving %s: %w", p.CacheFile, err)
	}

	if p.Out != nil {
		if err := report.Print(p.Out, fam.Layout.Family, stats, priority); err != nil {
			slog.Debug("Failed to print summary", "error", err)
		}
	}

	if p.MetricsFile != "" {
		if err := m.WriteToTextfile(p.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics", "error", err)
		}
	}

	target, err := datastore.FromConfig()
	if err != nil {
		return err
	}
	if target != nil {
		if err := datastore.Export(ctx, target, st); err != nil {
			return err
		}
	}

	return nil
}
