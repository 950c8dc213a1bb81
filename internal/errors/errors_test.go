package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("googlebooks", "slow down")

	if err.Error() != "googlebooks: slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "googlebooks: slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("lookup: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}

	if IsRateLimitError(stdErrors.New("other")) {
		t.Fatalf("IsRateLimitError returned true for a plain error")
	}
}

func TestRateLimitErrorWithRetry_VariousDurations(t *testing.T) {
	tests := []struct {
		name            string
		duration        time.Duration
		expectedMessage string
	}{
		{
			name:            "zero",
			duration:        0,
			expectedMessage: "rate limited",
		},
		{
			name:            "30 seconds",
			duration:        30 * time.Second,
			expectedMessage: "rate limited (retry after 30s)",
		},
		{
			name:            "1 hour",
			duration:        1 * time.Hour,
			expectedMessage: "rate limited (retry after 1h0m0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("", "rate limited", tt.duration)
			if err.Error() != tt.expectedMessage {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.expectedMessage)
			}
		})
	}
}

func TestRateLimitFromResponse(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set("Retry-After", "120")

	err := RateLimitFromResponse("youtube", resp)
	if err.RetryAfter != 2*time.Minute {
		t.Fatalf("RetryAfter = %v, want 2m", err.RetryAfter)
	}
	if err.Error() != "youtube: rate limited (HTTP 429) (retry after 2m0s)" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	resp.Header.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	if got := RateLimitFromResponse("youtube", resp).RetryAfter; got != 0 {
		t.Fatalf("RetryAfter = %v, want 0 for HTTP-date header", got)
	}
}
