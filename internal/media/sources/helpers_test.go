package sources

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/lepinkainen/coverfetch/internal/ratelimit"
	"github.com/lepinkainen/coverfetch/internal/testutil"
)

// countingServer starts a loopback server and counts the requests it serves.
func countingServer(t *testing.T, mux *http.ServeMux) (string, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := testutil.NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	return server.URL, &hits
}

func testOptions(serverURL string, extra ...Option) []Option {
	opts := []Option{
		WithBaseURL(serverURL),
		WithRateLimiter(ratelimit.Unlimited("test")),
	}
	return append(opts, extra...)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
