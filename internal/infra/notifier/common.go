package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"seoforge/internal/utils/text"
)

// Common webhook error types used by the Discord and Slack notifiers.

// RateLimitError represents a 429 rate limit error from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

func is429Error(err error) (*RateLimitError, bool) {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return rateLimitErr, true
	}
	return nil, false
}

// isRetryableError reports whether the error is worth retrying: server
// errors and network errors are, client errors are not, and rate limits are
// handled separately via is429Error.
func isRetryableError(err error) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return false
	}
	return true
}

// retryAfterFromHeader reads the Retry-After header, falling back to def.
func retryAfterFromHeader(resp *http.Response, def time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return def
}

// truncateRunes truncates to maxRunes Unicode characters, appending suffix
// when it cuts. Failure details can carry Japanese provider messages, so
// counting bytes would split characters.
func truncateRunes(s string, maxRunes int, suffix string) string {
	if text.CountRunes(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	cut := maxRunes - text.CountRunes(suffix)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + suffix
}
