package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/media"
)

const (
	// OpenLibraryName is the source tag of Open Library.
	OpenLibraryName = "openlibrary"

	openLibraryBaseURL   = "https://openlibrary.org"
	openLibraryCoversURL = "https://covers.openlibrary.org"
)

// OpenLibrary searches openlibrary.org and links to its large cover images.
type OpenLibrary struct {
	base
}

var _ media.Source = (*OpenLibrary)(nil)

// NewOpenLibrary creates an Open Library source.
func NewOpenLibrary(opts ...Option) *OpenLibrary {
	o := &OpenLibrary{base: newBase(OpenLibraryName, openLibraryBaseURL, cache.OpenLibraryTable, 3)}
	o.imageURL = openLibraryCoversURL
	o.apply(opts)
	return o
}

type openLibrarySearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title      string   `json:"title"`
		AuthorName []string `json:"author_name"`
		CoverID    int      `json:"cover_i"`
		ISBN       []string `json:"isbn"`
	} `json:"docs"`
}

// Resolve implements media.Source.
func (o *OpenLibrary) Resolve(ctx context.Context, q media.Query) (media.Result, bool) {
	return o.resolve(ctx, q, o.lookup)
}

func (o *OpenLibrary) lookup(ctx context.Context, q media.Query) (media.Result, error) {
	params := url.Values{}
	params.Set("q", searchTerms(q.Title, q.Creator))
	params.Set("limit", "1")

	var search openLibrarySearchResponse
	if err := o.getJSON(ctx, o.baseURL+"/search.json", params, &search); err != nil {
		return media.Result{}, err
	}

	if len(search.Docs) == 0 {
		return media.Result{}, media.ErrNotFound
	}

	doc := search.Docs[0]
	switch {
	case doc.CoverID > 0:
		return media.Result{URL: fmt.Sprintf("%s/b/id/%d-L.jpg", o.imageURL, doc.CoverID), Source: OpenLibraryName}, nil
	case len(doc.ISBN) > 0 && doc.ISBN[0] != "":
		return media.Result{URL: fmt.Sprintf("%s/b/isbn/%s-L.jpg", o.imageURL, url.PathEscape(doc.ISBN[0])), Source: OpenLibraryName}, nil
	}

	return media.Result{}, media.ErrNotFound
}
