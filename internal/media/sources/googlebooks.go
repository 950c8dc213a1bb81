package sources

import (
	"context"
	"net/url"

	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/media"
)

const (
	// GoogleBooksName is the source tag of Google Books.
	GoogleBooksName = "google"

	googleBooksBaseURL = "https://www.googleapis.com/books/v1"
)

// GoogleBooks queries the Google Books volumes API. Anonymous access is
// heavily rate limited; a 429 is treated as "no result".
type GoogleBooks struct {
	base
}

var _ media.Source = (*GoogleBooks)(nil)

// NewGoogleBooks creates a Google Books source.
func NewGoogleBooks(opts ...Option) *GoogleBooks {
	g := &GoogleBooks{base: newBase(GoogleBooksName, googleBooksBaseURL, cache.GoogleBooksTable, 1)}
	g.apply(opts)
	return g
}

type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string `json:"title"`
			ImageLinks struct {
				ExtraLarge     string `json:"extraLarge"`
				Large          string `json:"large"`
				Medium         string `json:"medium"`
				Small          string `json:"small"`
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Resolve implements media.Source.
func (g *GoogleBooks) Resolve(ctx context.Context, q media.Query) (media.Result, bool) {
	return g.resolve(ctx, q, g.lookup)
}

func (g *GoogleBooks) lookup(ctx context.Context, q media.Query) (media.Result, error) {
	params := url.Values{}
	params.Set("q", searchTerms(q.Title, q.Creator))
	params.Set("maxResults", "1")
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}

	var result googleBooksResponse
	if err := g.getJSON(ctx, g.baseURL+"/volumes", params, &result); err != nil {
		return media.Result{}, err
	}

	if len(result.Items) == 0 {
		return media.Result{}, media.ErrNotFound
	}

	links := result.Items[0].VolumeInfo.ImageLinks
	cover := media.PickLargest(links.ExtraLarge, links.Large, links.Medium, links.Small, links.Thumbnail, links.SmallThumbnail)
	if cover == "" {
		return media.Result{}, media.ErrNotFound
	}

	return media.Result{URL: cover, Source: GoogleBooksName}, nil
}
