package media

import (
	"context"
	"log/slog"
)

// Pipeline tries sources in a fixed trust order and keeps the first hit.
type Pipeline struct {
	sources []Source
}

// NewPipeline builds a pipeline. The first source is the most trusted.
func NewPipeline(sources ...Source) *Pipeline {
	return &Pipeline{sources: sources}
}

// Sources returns the configured sources in priority order.
func (p *Pipeline) Sources() []Source {
	return p.sources
}

// TopSource returns the tag of the most trusted source, or "" when empty.
func (p *Pipeline) TopSource() string {
	if len(p.sources) == 0 {
		return ""
	}
	return p.sources[0].Name()
}

// Resolve asks each source in order and returns the first result. Every
// source is asked at most once. A cancelled context stops the chain.
func (p *Pipeline) Resolve(ctx context.Context, q Query) (Result, bool) {
	for _, src := range p.sources {
		if ctx.Err() != nil {
			return Result{}, false
		}

		res, ok := src.Resolve(ctx, q)
		if !ok || res.URL == "" {
			slog.Debug("No result from source", "source", src.Name(), "title", q.Title)
			continue
		}

		if res.Source == "" {
			res.Source = src.Name()
		}
		res.URL = SecureURL(res.URL)
		return res, true
	}
	return Result{}, false
}
