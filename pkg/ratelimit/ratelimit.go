// Package ratelimit provides framework-agnostic sliding-window rate limiting.
//
// Each caller is tracked under an opaque key (typically endpoint plus user ID
// or client IP). The check and the recording of a request happen under a
// single lock acquisition, so concurrent requests cannot both slip under the
// limit.
package ratelimit

import (
	"time"
)

// Policy describes one rate limit: at most Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Decision represents the result of a rate limit check.
type Decision struct {
	// Key is the identifier used for rate limiting.
	Key string

	// Allowed indicates whether the request should be permitted.
	Allowed bool

	// Limit is the maximum number of requests allowed in the time window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// ResetAt is the time when the oldest counted request ages out.
	ResetAt time.Time

	// RetryAfter is the duration the client should wait before retrying.
	RetryAfter time.Duration
}

// ResetAtUnix returns the reset time as a Unix timestamp, for the
// X-RateLimit-Reset header.
func (d *Decision) ResetAtUnix() int64 {
	return d.ResetAt.Unix()
}

// RetryAfterSeconds returns the retry delay in whole seconds, rounded up so
// a client that waits exactly this long is past the window.
func (d *Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := int64((d.RetryAfter + time.Second - 1) / time.Second)
	return secs
}

// Clock provides an abstraction for time operations to enable testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock implementation that uses the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}
