package sources

import (
	"context"
	"net/http"
	"testing"

	"github.com/lepinkainen/coverfetch/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMet_PicksFirstMatchingCandidate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/public/collection/v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("hasImages"))
		assert.Equal(t, "Vermeer Young Woman with a Water Pitcher", r.URL.Query().Get("q"))
		writeJSON(w, `{"total":5,"objectIDs":[1,2,3,4,5]}`)
	})
	mux.HandleFunc("/public/collection/v1/objects/1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"objectID":1,"title":"Study of a Head","primaryImage":"https://images/1.jpg"}`)
	})
	mux.HandleFunc("/public/collection/v1/objects/2", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"objectID":2,"title":"Young Woman with a Water Pitcher","primaryImage":"http://images/2.jpg"}`)
	})
	mux.HandleFunc("/public/collection/v1/objects/3", func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("third candidate should not be fetched after a match")
	})
	serverURL, _ := countingServer(t, mux)

	res, ok := NewMet(testOptions(serverURL)...).Resolve(context.Background(),
		media.Query{Title: "Young Woman with a Water Pitcher", Creator: "Vermeer"})
	require.True(t, ok)
	assert.Equal(t, media.Result{URL: "https://images/2.jpg", Source: "met"}, res)
}

func TestMet_StrictWhenNothingMatches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/public/collection/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"total":4,"objectIDs":[10,11,12,13]}`)
	})
	mux.HandleFunc("/public/collection/v1/objects/", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEqual(t, "/public/collection/v1/objects/13", r.URL.Path, "only three candidates are examined")
		writeJSON(w, `{"title":"Something Else","primaryImage":"https://images/x.jpg"}`)
	})
	serverURL, hits := countingServer(t, mux)

	_, ok := NewMet(testOptions(serverURL)...).Resolve(context.Background(), media.Query{Title: "Sunflowers", Creator: "Van Gogh"})
	assert.False(t, ok)
	assert.EqualValues(t, 4, hits.Load(), "one search and three detail requests")
}

func TestMet_NullObjectIDs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/public/collection/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"total":0,"objectIDs":null}`)
	})
	serverURL, _ := countingServer(t, mux)

	_, ok := NewMet(testOptions(serverURL)...).Resolve(context.Background(), media.Query{Title: "x"})
	assert.False(t, ok)
}

func TestMet_ServerErrorIsNoResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/public/collection/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	serverURL, _ := countingServer(t, mux)

	var outcomes []string
	observer := func(source, outcome string) { outcomes = append(outcomes, source+":"+outcome) }

	_, ok := NewMet(testOptions(serverURL, WithRequestObserver(observer))...).Resolve(context.Background(), media.Query{Title: "x"})
	assert.False(t, ok)
	assert.Equal(t, []string{"met:status_500"}, outcomes)
}
