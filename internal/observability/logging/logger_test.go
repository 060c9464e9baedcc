package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/handler/http/requestid"
)

func jsonLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func parseEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be one JSON object")
	return entry
}

func TestNewLogger_LevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"default info", ""},
		{"debug enabled", "debug"},
		{"garbage falls back to info", "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)
			assert.NotNil(t, NewLogger())
			assert.NotNil(t, NewTextLogger())
		})
	}
}

func TestWithRequestID_AttachesField(t *testing.T) {
	logger, buf := jsonLogger(slog.LevelInfo)
	ctx := requestid.WithRequestID(context.Background(), "req-abc-123")

	WithRequestID(ctx, logger).Info("article created")

	entry := parseEntry(t, buf)
	assert.Equal(t, "req-abc-123", entry["request_id"])
	assert.Equal(t, "article created", entry["msg"])
}

func TestWithRequestID_NoIDNoField(t *testing.T) {
	logger, buf := jsonLogger(slog.LevelInfo)

	WithRequestID(context.Background(), logger).Info("reconciler tick")

	assert.NotContains(t, buf.String(), "request_id")
	assert.Contains(t, buf.String(), "reconciler tick")
}

func TestWithFields(t *testing.T) {
	logger, buf := jsonLogger(slog.LevelInfo)

	WithFields(logger, map[string]any{
		"article_id": "a1b2",
		"keyword":    "home espresso",
		"candidates": 50,
		"retried":    true,
	}).Info("analysis finished")

	entry := parseEntry(t, buf)
	assert.Equal(t, "a1b2", entry["article_id"])
	assert.Equal(t, "home espresso", entry["keyword"])
	assert.Equal(t, float64(50), entry["candidates"])
	assert.Equal(t, true, entry["retried"])
}

func TestFromContext(t *testing.T) {
	t.Run("logger stored on context comes back", func(t *testing.T) {
		logger, buf := jsonLogger(slog.LevelInfo)
		ctx := WithLogger(context.Background(), logger)

		FromContext(ctx).Info("generation queued")

		assert.Contains(t, buf.String(), "generation queued")
	})

	t.Run("bare context falls back to slog default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("wrong value type falls back too", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), loggerContextKey, "not a logger")
		assert.Equal(t, slog.Default(), FromContext(ctx))
	})
}

func TestLogger_JSONShape(t *testing.T) {
	logger, buf := jsonLogger(slog.LevelInfo)

	logger.Info("publish succeeded",
		"article_id", "a1b2",
		"target", "wordpress",
	)

	entry := parseEntry(t, buf)
	assert.Equal(t, "publish succeeded", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.NotEmpty(t, entry["time"])
	assert.Equal(t, "wordpress", entry["target"])
}

func TestLogger_DebugFiltered(t *testing.T) {
	logger, buf := jsonLogger(slog.LevelInfo)

	logger.Debug("raw provider payload")
	logger.Info("metrics fetched")

	assert.NotContains(t, buf.String(), "raw provider payload")
	assert.Contains(t, buf.String(), "metrics fetched")
}

func TestLogger_OneJSONObjectPerLine(t *testing.T) {
	logger, buf := jsonLogger(slog.LevelInfo)

	logger.Info("first")
	logger.Warn("second")
	logger.Error("third")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line %d", i+1)
	}
}

func TestLogger_RequestScopedComposition(t *testing.T) {
	logger, buf := jsonLogger(slog.LevelDebug)

	ctx := WithLogger(context.Background(), logger)
	ctx = requestid.WithRequestID(ctx, "req-compose")

	scoped := WithRequestID(ctx, FromContext(ctx))
	scoped = WithFields(scoped, map[string]any{"article_id": "a9"})
	scoped.Info("status changed")

	entry := parseEntry(t, buf)
	assert.Equal(t, "req-compose", entry["request_id"])
	assert.Equal(t, "a9", entry["article_id"])
	assert.Equal(t, "status changed", entry["msg"])
}
