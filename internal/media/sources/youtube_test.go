package sources

import (
	"context"
	"net/http"
	"testing"

	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYouTube_MissingKeyMakesNoRequest(t *testing.T) {
	mux := http.NewServeMux()
	serverURL, hits := countingServer(t, mux)

	src := NewYouTube(testOptions(serverURL)...)
	_, ok := src.Resolve(context.Background(), media.Query{Title: "Never Gonna Give You Up", Creator: "Rick Astley"})
	assert.False(t, ok)
	assert.Zero(t, hits.Load())

	_, err := src.lookup(context.Background(), media.Query{Title: "x"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestYouTube_PicksLargestThumbnail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "1", q.Get("maxResults"))
		assert.Equal(t, "yt-key", q.Get("key"))
		assert.Equal(t, "Never Gonna Give You Up Rick Astley", q.Get("q"))
		writeJSON(w, `{"items":[{"id":{"videoId":"dQw4w9WgXcQ"},"snippet":{"title":"Never Gonna Give You Up","thumbnails":{
			"default":{"url":"https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg"},
			"high":{"url":"https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"}}}}]}`)
	})
	serverURL, _ := countingServer(t, mux)

	res, ok := NewYouTube(testOptions(serverURL, WithAPIKey("yt-key"))...).Resolve(context.Background(),
		media.Query{Title: "Never Gonna Give You Up", Creator: "Rick Astley"})
	require.True(t, ok)
	assert.Equal(t, media.Result{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", Source: "youtube"}, res)
}

func TestYouTube_NoItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"items":[]}`)
	})
	serverURL, _ := countingServer(t, mux)

	_, ok := NewYouTube(testOptions(serverURL, WithAPIKey("yt-key"))...).Resolve(context.Background(), media.Query{Title: "x"})
	assert.False(t, ok)
}
