// Package middleware provides HTTP middleware shared across handler
// packages: per-endpoint rate limiting and CORS.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/respond"
	"seoforge/pkg/config"
	"seoforge/pkg/ratelimit"
)

// errRateLimited is the constant 429 body. The retry delay is not part of
// the message so responses stay identical across requests.
var errRateLimited = errors.New("rate limit exceeded")

// RateLimit enforces sliding-window limits per endpoint. Requests are keyed
// by the authenticated user ID; requests arriving before authentication
// (the token endpoint) fall back to the client IP.
type RateLimit struct {
	Limiter *ratelimit.Limiter
	Config  *config.RateLimitConfig
	IPs     IPExtractor
	Log     *slog.Logger
}

// NewRateLimit creates the rate limit middleware. A nil extractor defaults
// to RemoteAddr extraction, which cannot be spoofed.
func NewRateLimit(limiter *ratelimit.Limiter, cfg *config.RateLimitConfig, ips IPExtractor, log *slog.Logger) *RateLimit {
	if ips == nil {
		ips = &RemoteAddrExtractor{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &RateLimit{Limiter: limiter, Config: cfg, IPs: ips, Log: log}
}

// Endpoint returns middleware applying the named endpoint's policy.
// Every response carries X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset headers; a denied request gets 429 plus Retry-After.
func (m *RateLimit) Endpoint(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.Config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			policy := m.Config.Policy(endpoint)
			decision := m.Limiter.Allow(endpoint, m.callerKey(r), policy)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAtUnix(), 10))

			if !decision.Allowed {
				// The wait time lives in Retry-After only; a fixed
				// body keeps 429 responses byte-identical and
				// cacheable by clients.
				h.Set("Retry-After", strconv.FormatInt(decision.RetryAfterSeconds(), 10))
				m.Log.Warn("rate limit exceeded",
					slog.String("endpoint", endpoint),
					slog.String("key", decision.Key),
					slog.Int("limit", decision.Limit))
				respond.SafeError(w, http.StatusTooManyRequests, errRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// callerKey identifies the caller: user ID when authenticated, client IP
// otherwise. The raw RemoteAddr is the last resort so a request is never
// exempt just because extraction failed.
func (m *RateLimit) callerKey(r *http.Request) string {
	if userID := auth.UserID(r.Context()); userID != uuid.Nil {
		return "user:" + userID.String()
	}
	ip, err := m.IPs.ExtractIP(r)
	if err != nil {
		m.Log.Warn("client IP extraction failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("error", err))
		return "addr:" + r.RemoteAddr
	}
	return "ip:" + ip
}
