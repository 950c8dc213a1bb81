package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/media"
)

const (
	// WikimediaName is the source tag of Wikimedia Commons.
	WikimediaName = "wikimedia"

	wikimediaBaseURL    = "https://commons.wikimedia.org"
	wikimediaCandidates = 5
	wikimediaThumbWidth = 1280
)

// Wikimedia searches the File namespace of Wikimedia Commons.
// It is the most accurate artwork source.
type Wikimedia struct {
	base
}

var _ media.Source = (*Wikimedia)(nil)

// NewWikimedia creates a Wikimedia Commons source.
func NewWikimedia(opts ...Option) *Wikimedia {
	w := &Wikimedia{base: newBase(WikimediaName, wikimediaBaseURL, cache.WikimediaTable, 5)}
	w.apply(opts)
	return w
}

type wikimediaSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikimediaImageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL      string `json:"url"`
				ThumbURL string `json:"thumburl"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Resolve implements media.Source.
func (w *Wikimedia) Resolve(ctx context.Context, q media.Query) (media.Result, bool) {
	return w.resolve(ctx, q, w.lookup)
}

func (w *Wikimedia) lookup(ctx context.Context, q media.Query) (media.Result, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", searchTerms(q.Title, q.Creator, "painting"))
	params.Set("srnamespace", "6")
	params.Set("srlimit", fmt.Sprint(wikimediaCandidates))
	params.Set("format", "json")
	params.Set("origin", "*")

	var search wikimediaSearchResponse
	if err := w.getJSON(ctx, w.baseURL+"/w/api.php", params, &search); err != nil {
		return media.Result{}, err
	}

	for _, hit := range search.Query.Search {
		imageURL, err := w.fileImageURL(ctx, hit.Title)
		if err != nil {
			return media.Result{}, err
		}
		if isUsableImageURL(imageURL) {
			return media.Result{URL: imageURL, Source: WikimediaName}, nil
		}
	}

	return media.Result{}, media.ErrNotFound
}

// fileImageURL returns the scaled thumbnail URL of a file page, or its original URL.
func (w *Wikimedia) fileImageURL(ctx context.Context, pageTitle string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", pageTitle)
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")
	params.Set("iiurlwidth", fmt.Sprint(wikimediaThumbWidth))
	params.Set("format", "json")
	params.Set("origin", "*")

	var info wikimediaImageInfoResponse
	if err := w.getJSON(ctx, w.baseURL+"/w/api.php", params, &info); err != nil {
		return "", err
	}

	for _, page := range info.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		return media.PickLargest(page.ImageInfo[0].ThumbURL, page.ImageInfo[0].URL), nil
	}
	return "", nil
}

// isUsableImageURL accepts absolute http(s) links to JPEG or PNG files.
// Commons also hosts PDFs, SVGs and videos which are of no use here.
func isUsableImageURL(u string) bool {
	if !strings.HasPrefix(u, "http") {
		return false
	}
	lower := strings.ToLower(u)
	return strings.Contains(lower, ".jpg") || strings.Contains(lower, ".png")
}
