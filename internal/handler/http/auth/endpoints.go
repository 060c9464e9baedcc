package auth

import "strings"

// PublicEndpoints lists the paths reachable without a JWT: health
// probes for orchestration, /metrics for Prometheus, Swagger docs, and
// the token endpoint itself.
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
	"/auth/token",
}

// IsPublicEndpoint reports whether path may skip authentication.
// Entries with a trailing slash match by prefix (Swagger assets);
// everything else matches exactly, optionally with a trailing slash or
// query string, so /health never admits /health/detail or
// /healthcheck.
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}

		switch {
		case path == endpoint:
			return true
		case path == endpoint+"/":
			return true
		case strings.HasPrefix(path, endpoint+"?"):
			return true
		}
	}
	return false
}
