// Package respond writes JSON responses and keeps internal error detail
// out of client-facing bodies.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v with the given status code. Encode failures after the
// header is written can only be logged.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes the error message as-is. Use only for domain sentinels
// whose text is written for clients.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeFragments whitelists the message fragments this API's client-facing
// errors are built from: entity validation messages, transition and
// lookup sentinels, auth failures, the rate limiter, and JSON decode
// errors. Anything else is treated as internal.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"unknown",
	"unauthorized",
	"rate limit",
	"must be",
	"cannot be",
	"at most",
	"too long",
	"too short",
	"not ready",
	"no keywords",
	"unexpected end of JSON",
}

// SafeError writes err's message if it matches a whitelisted fragment and
// a generic body otherwise. Messages treated as internal are logged with
// credentials masked. A 5xx code always gets the generic body.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	if code < 500 && isSafeMessage(msg) {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

func isSafeMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, fragment := range safeFragments {
		if strings.Contains(lower, strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
