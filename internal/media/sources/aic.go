package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/media"
)

const (
	// AICName is the source tag of the Art Institute of Chicago.
	AICName = "aic"

	aicBaseURL    = "https://api.artic.edu"
	aicIIIFURL    = "https://www.artic.edu/iiif/2"
	aicCandidates = 3
)

// AIC searches the Art Institute of Chicago API. Its search is fuzzy, so it
// is the last artwork source; when no candidate passes the title check the
// first result with an image is used anyway.
type AIC struct {
	base
}

var _ media.Source = (*AIC)(nil)

// NewAIC creates an Art Institute of Chicago source.
func NewAIC(opts ...Option) *AIC {
	a := &AIC{base: newBase(AICName, aicBaseURL, cache.AICTable, 5)}
	a.imageURL = aicIIIFURL
	a.apply(opts)
	return a
}

type aicSearchResponse struct {
	Data []aicArtwork `json:"data"`
}

type aicArtwork struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	ArtistDisplay string `json:"artist_display"`
	ImageID       string `json:"image_id"`
}

// Resolve implements media.Source.
func (a *AIC) Resolve(ctx context.Context, q media.Query) (media.Result, bool) {
	return a.resolve(ctx, q, a.lookup)
}

func (a *AIC) lookup(ctx context.Context, q media.Query) (media.Result, error) {
	params := url.Values{}
	params.Set("q", searchTerms(q.Creator, q.Title))
	params.Set("limit", fmt.Sprint(aicCandidates))
	params.Set("fields", "id,title,artist_display,image_id")

	var search aicSearchResponse
	if err := a.getJSON(ctx, a.baseURL+"/api/v1/artworks/search", params, &search); err != nil {
		return media.Result{}, err
	}

	for _, art := range search.Data {
		if art.ImageID != "" && media.IsAcceptableMatch(art.Title, q.Title) {
			return media.Result{URL: a.iiifURL(art.ImageID), Source: AICName}, nil
		}
	}

	if len(search.Data) > 0 && search.Data[0].ImageID != "" {
		return media.Result{URL: a.iiifURL(search.Data[0].ImageID), Source: AICName}, nil
	}

	return media.Result{}, media.ErrNotFound
}

// iiifURL builds an 843px wide JPEG link, the size AIC recommends for reuse.
func (a *AIC) iiifURL(imageID string) string {
	return fmt.Sprintf("%s/%s/full/843,/0/default.jpg", a.imageURL, imageID)
}
