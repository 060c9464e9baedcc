package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Environment lookup helpers. Unset variables take the default silently;
// set-but-unparseable values take the default with a warning, since a
// typo in deployment config should be visible without stopping startup.

// GetEnvString returns the variable's value, or def when unset.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt parses the variable as an integer.
func GetEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", def))
		return def
	}
	return n
}

// GetEnvBool parses the variable with strconv.ParseBool semantics
// ("1", "t", "true" and their upper-case forms, likewise for false).
func GetEnvBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Bool("default", def))
		return def
	}
	return b
}

// GetEnvDuration parses the variable with time.ParseDuration ("30s",
// "5m", "1h30m").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", def.String()))
		return def
	}
	return d
}

// ValidatePositiveDuration rejects zero and negative durations. Used for
// windows and intervals where zero would mean a division by nothing or a
// busy loop.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}
