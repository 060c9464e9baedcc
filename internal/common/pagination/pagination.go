// Package pagination handles offset pagination for the article listing:
// query parameter parsing, offset math and the response envelope.
package pagination

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
)

// Params are the parsed page/limit pair of one listing request. Page is
// 1-based.
type Params struct {
	Page  int
	Limit int
}

// Config bounds what a client may request per page.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig is page 1, 20 articles per page, capped at 100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// LoadFromEnv reads PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT and
// PAGINATION_MAX_LIMIT, keeping the defaults for anything unset or
// unparseable.
func LoadFromEnv() Config {
	def := DefaultConfig()
	return Config{
		DefaultPage:  envInt("PAGINATION_DEFAULT_PAGE", def.DefaultPage),
		DefaultLimit: envInt("PAGINATION_DEFAULT_LIMIT", def.DefaultLimit),
		MaxLimit:     envInt("PAGINATION_MAX_LIMIT", def.MaxLimit),
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// ParseQueryParams reads the page and limit query parameters. Missing
// parameters take the configured defaults; out-of-range values are an
// error rather than silently clamped, so clients notice bad requests.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{
		Page:  config.DefaultPage,
		Limit: config.DefaultLimit,
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > config.MaxLimit {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", config.MaxLimit)
		}
		params.Limit = limit
	}
	return params, nil
}

// CalculateOffset maps a 1-based page onto the matching SQL OFFSET.
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages is ceiling division of total by limit. An empty
// result set still has one page so page numbers stay valid.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
