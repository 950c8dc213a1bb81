package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is a scripted Source that records how often it was asked.
type stubSource struct {
	name   string
	result Result
	ok     bool
	calls  int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Resolve(_ context.Context, _ Query) (Result, bool) {
	s.calls++
	return s.result, s.ok
}

func TestIsAcceptableMatch(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		queried   string
		want      bool
	}{
		{"exact", "The Starry Night", "The Starry Night", true},
		{"first word only", "Starry Night over the Rhone", "Starry Night", true},
		{"case insensitive", "STARRY NIGHT", "starry night", true},
		{"unrelated", "Sunflowers", "Starry Night", false},
		{"substring of longer word", "Nightingale", "Night Watch", true},
		{"empty query accepts anything", "Anything", "", true},
		{"unicode folding", "ÉTUDE EN ROUGE", "étude", true},
		{"first word missing", "Night", "Starry Night", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptableMatch(tt.candidate, tt.queried))
		})
	}
}

func TestSecureURL(t *testing.T) {
	assert.Equal(t, "https://a/x.jpg", SecureURL("http://a/x.jpg"))
	assert.Equal(t, "https://a/x.jpg", SecureURL("https://a/x.jpg"))
	assert.Equal(t, "https://a/x.jpg", SecureURL("HTTP://a/x.jpg"))
	assert.Equal(t, "//a/x.jpg", SecureURL("//a/x.jpg"))
	assert.Equal(t, "", SecureURL(""))
}

func TestPickLargest(t *testing.T) {
	assert.Equal(t, "L", PickLargest("L", "M", "T"))
	assert.Equal(t, "M", PickLargest("", "M", "T"))
	assert.Equal(t, "T", PickLargest("", "", "T"))
	assert.Equal(t, "", PickLargest("", ""))
	assert.Equal(t, "", PickLargest())
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	q := Query{Title: "Starry Night", Creator: "Van Gogh"}

	res, ok := Guard(ctx, "met", q, func(context.Context, Query) (Result, error) {
		return Result{URL: "http://img/x.jpg"}, nil
	})
	require.True(t, ok)
	assert.Equal(t, Result{URL: "https://img/x.jpg", Source: "met"}, res)

	_, ok = Guard(ctx, "met", q, func(context.Context, Query) (Result, error) {
		return Result{}, ErrNotFound
	})
	assert.False(t, ok)

	_, ok = Guard(ctx, "met", q, func(context.Context, Query) (Result, error) {
		return Result{URL: "https://partial"}, errors.New("decode failed")
	})
	assert.False(t, ok)

	_, ok = Guard(ctx, "met", q, func(context.Context, Query) (Result, error) {
		return Result{}, nil
	})
	assert.False(t, ok, "an empty URL is not a result")
}

func TestPipeline_FirstHitWins(t *testing.T) {
	wikimedia := &stubSource{name: "wikimedia", result: Result{URL: "https://w/1.jpg", Source: "wikimedia"}, ok: true}
	met := &stubSource{name: "met", result: Result{URL: "https://m/1.jpg", Source: "met"}, ok: true}

	p := NewPipeline(wikimedia, met)
	res, ok := p.Resolve(context.Background(), Query{Title: "Starry Night"})

	require.True(t, ok)
	assert.Equal(t, "wikimedia", res.Source)
	assert.Equal(t, 1, wikimedia.calls)
	assert.Equal(t, 0, met.calls, "lower priority source must not be asked after a hit")
}

func TestPipeline_FallsThroughInOrder(t *testing.T) {
	wikimedia := &stubSource{name: "wikimedia"}
	met := &stubSource{name: "met"}
	aic := &stubSource{name: "aic", result: Result{URL: "http://a/x.jpg"}, ok: true}

	p := NewPipeline(wikimedia, met, aic)
	res, ok := p.Resolve(context.Background(), Query{Title: "Nighthawks"})

	require.True(t, ok)
	assert.Equal(t, Result{URL: "https://a/x.jpg", Source: "aic"}, res)
	assert.Equal(t, []int{1, 1, 1}, []int{wikimedia.calls, met.calls, aic.calls})
}

func TestPipeline_AllMiss(t *testing.T) {
	a := &stubSource{name: "openlibrary"}
	b := &stubSource{name: "googlebooks"}

	_, ok := NewPipeline(a, b).Resolve(context.Background(), Query{Title: "Unknown"})
	assert.False(t, ok)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestPipeline_CancelledContext(t *testing.T) {
	a := &stubSource{name: "wikimedia", result: Result{URL: "https://w"}, ok: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := NewPipeline(a).Resolve(ctx, Query{Title: "x"})
	assert.False(t, ok)
	assert.Equal(t, 0, a.calls)
}

func TestPipeline_TopSource(t *testing.T) {
	assert.Equal(t, "", NewPipeline().TopSource())
	assert.Equal(t, "wikimedia", NewPipeline(&stubSource{name: "wikimedia"}, &stubSource{name: "met"}).TopSource())
}
