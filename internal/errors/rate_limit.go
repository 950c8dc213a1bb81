package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RateLimitError represents a rate limit response from a catalog API.
type RateLimitError struct {
	Source     string
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", msg, e.RetryAfter)
	}
	return msg
}

// NewRateLimitError creates a new RateLimitError with the given message
func NewRateLimitError(source, message string) *RateLimitError {
	return &RateLimitError{Source: source, Message: message}
}

// NewRateLimitErrorWithRetry creates a RateLimitError carrying a retry hint.
func NewRateLimitErrorWithRetry(source, message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Source: source, Message: message, RetryAfter: retryAfter}
}

// RateLimitFromResponse builds a RateLimitError from a 429 response,
// honouring a Retry-After header given in seconds.
func RateLimitFromResponse(source string, resp *http.Response) *RateLimitError {
	var retry time.Duration
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			retry = time.Duration(secs) * time.Second
		}
	}
	return NewRateLimitErrorWithRetry(source, fmt.Sprintf("rate limited (HTTP %d)", resp.StatusCode), retry)
}

// IsRateLimitError reports whether err is a RateLimitError (even when wrapped).
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return stdErrors.As(err, &rlErr)
}
