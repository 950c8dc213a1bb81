package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/media"
)

const (
	// MetName is the source tag of The Metropolitan Museum of Art.
	MetName = "met"

	metBaseURL    = "https://collectionapi.metmuseum.org"
	metCandidates = 3
)

// Met searches the Metropolitan Museum collection API. Candidates must pass
// media.IsAcceptableMatch.
type Met struct {
	base
}

var _ media.Source = (*Met)(nil)

// NewMet creates a Met Museum source.
func NewMet(opts ...Option) *Met {
	m := &Met{base: newBase(MetName, metBaseURL, cache.MetTable, 10)}
	m.apply(opts)
	return m
}

type metSearchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

type metObject struct {
	ObjectID     int    `json:"objectID"`
	Title        string `json:"title"`
	PrimaryImage string `json:"primaryImage"`
}

// Resolve implements media.Source.
func (m *Met) Resolve(ctx context.Context, q media.Query) (media.Result, bool) {
	return m.resolve(ctx, q, m.lookup)
}

func (m *Met) lookup(ctx context.Context, q media.Query) (media.Result, error) {
	params := url.Values{}
	params.Set("hasImages", "true")
	params.Set("q", searchTerms(q.Creator, q.Title))

	var search metSearchResponse
	if err := m.getJSON(ctx, m.baseURL+"/public/collection/v1/search", params, &search); err != nil {
		return media.Result{}, err
	}

	ids := search.ObjectIDs
	if len(ids) > metCandidates {
		ids = ids[:metCandidates]
	}

	for _, id := range ids {
		var obj metObject
		if err := m.getJSON(ctx, fmt.Sprintf("%s/public/collection/v1/objects/%d", m.baseURL, id), nil, &obj); err != nil {
			return media.Result{}, err
		}
		if obj.PrimaryImage != "" && media.IsAcceptableMatch(obj.Title, q.Title) {
			return media.Result{URL: obj.PrimaryImage, Source: MetName}, nil
		}
	}

	return media.Result{}, media.ErrNotFound
}
