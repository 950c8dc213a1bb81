package sources

import (
	"context"
	"errors"
	"net/url"

	"github.com/lepinkainen/coverfetch/internal/cache"
	"github.com/lepinkainen/coverfetch/internal/media"
)

const (
	// YouTubeName is the source tag of YouTube.
	YouTubeName = "youtube"

	youTubeBaseURL = "https://www.googleapis.com/youtube/v3"
)

// ErrMissingAPIKey is returned when the YouTube source has no API key.
var ErrMissingAPIKey = errors.New("youtube: API key not configured (set YOUTUBE_API_KEY)")

// YouTube finds a video through the Data API search endpoint and returns its
// largest thumbnail.
type YouTube struct {
	base
}

var _ media.Source = (*YouTube)(nil)

// NewYouTube creates a YouTube source. Pass WithAPIKey; without a key every
// lookup fails and resolves to nothing.
func NewYouTube(opts ...Option) *YouTube {
	y := &YouTube{base: newBase(YouTubeName, youTubeBaseURL, cache.YouTubeTable, 5)}
	y.apply(opts)
	return y
}

type youTubeThumbnail struct {
	URL string `json:"url"`
}

type youTubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Maxres   youTubeThumbnail `json:"maxres"`
				Standard youTubeThumbnail `json:"standard"`
				High     youTubeThumbnail `json:"high"`
				Medium   youTubeThumbnail `json:"medium"`
				Default  youTubeThumbnail `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Resolve implements media.Source.
func (y *YouTube) Resolve(ctx context.Context, q media.Query) (media.Result, bool) {
	return y.resolve(ctx, q, y.lookup)
}

func (y *YouTube) lookup(ctx context.Context, q media.Query) (media.Result, error) {
	if y.apiKey == "" {
		return media.Result{}, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", "1")
	params.Set("q", searchTerms(q.Title, q.Creator))
	params.Set("type", "video")
	params.Set("key", y.apiKey)

	var search youTubeSearchResponse
	if err := y.getJSON(ctx, y.baseURL+"/search", params, &search); err != nil {
		return media.Result{}, err
	}

	if len(search.Items) == 0 {
		return media.Result{}, media.ErrNotFound
	}

	thumbs := search.Items[0].Snippet.Thumbnails
	thumb := media.PickLargest(thumbs.Maxres.URL, thumbs.Standard.URL, thumbs.High.URL, thumbs.Medium.URL, thumbs.Default.URL)
	if thumb == "" {
		return media.Result{}, media.ErrNotFound
	}

	return media.Result{URL: thumb, Source: YouTubeName}, nil
}
