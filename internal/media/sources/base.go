// Package sources implements media.Source for the public catalog APIs.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lepinkainen/coverfetch/internal/cache"
	apierrors "github.com/lepinkainen/coverfetch/internal/errors"
	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/lepinkainen/coverfetch/internal/ratelimit"
)

const defaultTimeout = 10 * time.Second

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// RequestObserver is told the outcome of every outbound request
// ("ok", "error", "rate_limited" or "status_<code>").
type RequestObserver func(source, outcome string)

// base holds the plumbing shared by every source.
type base struct {
	name       string
	baseURL    string
	imageURL   string
	apiKey     string
	httpClient HTTPDoer
	limiter    *ratelimit.Limiter
	cache      *cache.CacheDB
	table      string
	cacheTTL   time.Duration
	missTTL    time.Duration
	observe    RequestObserver
}

func newBase(name, baseURL, table string, perSecond int) base {
	return base{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    ratelimit.New(name, perSecond),
		table:      table,
		cacheTTL:   cache.DefaultCacheTTL,
	}
}

// Option is a functional option shared by all sources.
type Option func(*base)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(b *base) {
		if c != nil {
			b.httpClient = c
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithImageBaseURL overrides the base URL used to build image links
// (Art Institute IIIF server, Open Library covers host).
func WithImageBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.imageURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithAPIKey sets the API key sent with every request (Google Books, YouTube).
func WithAPIKey(key string) Option {
	return func(b *base) {
		b.apiKey = key
	}
}

// WithRateLimiter sets a custom rate limiter.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(b *base) {
		if l != nil {
			b.limiter = l
		}
	}
}

// WithCache stores hits in c for ttl. Misses are fetched again every time
// unless WithMissTTL is also given, so a rerun can pick up an image a
// higher-priority source gained since the last run.
func WithCache(c *cache.CacheDB, ttl time.Duration) Option {
	return func(b *base) {
		b.cache = c
		if ttl > 0 {
			b.cacheTTL = ttl
		}
	}
}

// WithMissTTL also caches misses for ttl. 0 disables miss caching.
func WithMissTTL(ttl time.Duration) Option {
	return func(b *base) {
		if ttl >= 0 {
			b.missTTL = ttl
		}
	}
}

// WithRequestObserver registers a hook called after each request.
func WithRequestObserver(o RequestObserver) Option {
	return func(b *base) {
		b.observe = o
	}
}

func (b *base) apply(opts []Option) {
	for _, opt := range opts {
		opt(b)
	}
}

// Name returns the source tag.
func (b *base) Name() string {
	return b.name
}

// cachedLookup is what ends up in the response cache for one query.
type cachedLookup struct {
	URL      string `json:"url,omitempty"`
	NotFound bool   `json:"not_found,omitempty"`
}

func cacheKey(q media.Query) string {
	return strings.ToLower(strings.TrimSpace(q.Creator)) + "|" + strings.ToLower(strings.TrimSpace(q.Title))
}

// resolve runs lookup through the response cache and media.Guard.
func (b *base) resolve(ctx context.Context, q media.Query, lookup media.LookupFunc) (media.Result, bool) {
	return media.Guard(ctx, b.name, q, func(ctx context.Context, q media.Query) (media.Result, error) {
		if b.cache == nil {
			return lookup(ctx, q)
		}

		entry, _, err := cache.GetOrFetch(b.cache, b.table, cacheKey(q), b.cacheTTL, func() (cachedLookup, error) {
			res, err := lookup(ctx, q)
			switch {
			case errors.Is(err, media.ErrNotFound) && b.missTTL > 0:
				return cachedLookup{NotFound: true}, nil
			case err != nil:
				// Errors, and misses without a miss TTL, never reach the cache.
				return cachedLookup{}, err
			}
			return cachedLookup{URL: res.URL}, nil
		}, cache.SelectNegativeCacheTTL(b.missTTL, func(c cachedLookup) bool { return c.NotFound }))
		if err != nil {
			return media.Result{}, err
		}
		if entry.NotFound || entry.URL == "" {
			return media.Result{}, media.ErrNotFound
		}
		return media.Result{URL: entry.URL, Source: b.name}, nil
	})
}

func (b *base) report(outcome string) {
	if b.observe != nil {
		b.observe(b.name, outcome)
	}
}

// getJSON performs a rate limited GET of endpoint?params and decodes the body into target.
func (b *base) getJSON(ctx context.Context, endpoint string, params url.Values, target any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "coverfetch/1.0 (+https://github.com/lepinkainen/coverfetch)")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.report("error")
		return fmt.Errorf("%s request failed: %w", b.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		b.report("rate_limited")
		return apierrors.RateLimitFromResponse(b.name, resp)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.report(fmt.Sprintf("status_%d", resp.StatusCode))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", b.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		b.report("error")
		return fmt.Errorf("decoding %s response: %w", b.name, err)
	}

	b.report("ok")
	return nil
}

// searchTerms joins the non-empty parts with single spaces.
func searchTerms(parts ...string) string {
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}
	return strings.Join(terms, " ")
}
