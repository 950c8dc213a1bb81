// Package media defines the source interface used to resolve a representative
// image URL for an entity, and the priority pipeline that chains sources.
package media

import (
	"context"
	"errors"
	"log/slog"

	apierrors "github.com/lepinkainen/coverfetch/internal/errors"
)

// ErrNotFound is returned by lookups when a catalog has no usable match.
// It is an expected outcome and is not logged as a failure.
var ErrNotFound = errors.New("no usable media found")

// Query is the normalized lookup input handed to every source.
type Query struct {
	// Title of the artwork, book or video.
	Title string
	// Creator is the artist, author or channel name.
	Creator string
}

// Result is a resolved media reference.
type Result struct {
	// URL points at the image. Always https after normalization.
	URL string
	// Source is the tag of the catalog that produced the URL.
	Source string
}

// Source resolves media for a query from one external catalog.
// Resolve never fails: any problem is reported as (Result{}, false).
type Source interface {
	// Name returns the source tag stored in the cache file (e.g. "wikimedia").
	Name() string

	// Resolve returns the first acceptable media reference for q.
	Resolve(ctx context.Context, q Query) (Result, bool)
}

// LookupFunc performs a single catalog lookup and may fail.
type LookupFunc func(ctx context.Context, q Query) (Result, error)

// Guard runs lookup and downgrades every error to "no result". ErrNotFound is
// silent, rate limiting is a warning and anything else is logged at debug
// level with the source name. The
// returned URL is normalized to https and tagged with source when untagged.
func Guard(ctx context.Context, source string, q Query, lookup LookupFunc) (Result, bool) {
	res, err := lookup(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
		case apierrors.IsRateLimitError(err):
			slog.Warn("Source rate limited", "source", source, "title", q.Title, "error", err)
		default:
			slog.Debug("Source lookup failed", "source", source, "title", q.Title, "creator", q.Creator, "error", err)
		}
		return Result{}, false
	}
	if res.URL == "" {
		return Result{}, false
	}
	if res.Source == "" {
		res.Source = source
	}
	res.URL = SecureURL(res.URL)
	return res, true
}
