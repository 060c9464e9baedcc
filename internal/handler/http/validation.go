package http

import (
	"net/http"
)

const (
	maxAuthHeaderBytes = 8192
	maxURIPathBytes    = 2048
	maxBodyBytes       = 10 << 20
)

// InputValidation rejects oversized inputs before they reach a handler:
// Authorization headers over 8KB, URI paths over 2KB, and bodies over
// 10MB (the body limit is enforced lazily via MaxBytesReader).
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthHeaderBytes {
				writeValidationError(w, http.StatusBadRequest, "authorization header too large")
				return
			}

			if len(r.URL.Path) > maxURIPathBytes {
				writeValidationError(w, http.StatusRequestURITooLong, "URI too long")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func writeValidationError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
