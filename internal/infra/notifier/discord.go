package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook URL.
	WebhookURL string
	// Timeout is the HTTP request timeout for Discord API calls.
	Timeout time.Duration
}

// DiscordNotifier sends failure events to Discord via webhook embeds.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseDelay   time.Duration
}

// NewDiscordNotifier creates a DiscordNotifier. Discord allows roughly 5
// webhook requests per 2 seconds; the limiter stays under that.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &DiscordNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(2.0, 2),
		baseDelay:   2 * time.Second,
	}
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

const (
	// Discord embed limits.
	maxEmbedTitleRunes       = 256
	maxEmbedDescriptionRunes = 4096
	maxEmbedFieldRunes       = 1024

	discordTruncationSuffix = "..."

	// embedColorRed marks failure embeds.
	embedColorRed = 0xE74C3C
)

func (d *DiscordNotifier) buildPayload(ev Event) discordPayload {
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	return discordPayload{
		Embeds: []discordEmbed{{
			Title: truncateRunes(
				fmt.Sprintf("Article failed during %s", ev.Kind),
				maxEmbedTitleRunes, discordTruncationSuffix),
			Description: truncateRunes(ev.Detail, maxEmbedDescriptionRunes, discordTruncationSuffix),
			Color:       embedColorRed,
			Fields: []discordEmbedField{
				{Name: "article", Value: ev.ArticleID.String(), Inline: true},
				{Name: "keyword", Value: truncateRunes(ev.Keyword, maxEmbedFieldRunes, discordTruncationSuffix), Inline: true},
			},
			Timestamp: occurred.UTC().Format(time.RFC3339),
		}},
	}
}

func (d *DiscordNotifier) send(ctx context.Context, ev Event) error {
	jsonData, err := json.Marshal(d.buildPayload(ev))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: retryAfterFromHeader(resp, 2*time.Second),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}
	default:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
		}
	}
}

// NotifyFailure delivers the event, retrying once on transient failures.
func (d *DiscordNotifier) NotifyFailure(ctx context.Context, ev Event) error {
	const maxAttempts = 2

	requestID := uuid.NewString()
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.String("article_id", ev.ArticleID.String()),
		slog.String("channel", "discord"))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("discord rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.send(ctx, ev)
		if err == nil {
			logger.Info("failure notification sent", slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		delay := d.baseDelay * time.Duration(attempt)
		if rateLimitErr, ok := is429Error(err); ok {
			delay = rateLimitErr.RetryAfter
		} else if !isRetryableError(err) {
			logger.Warn("failure notification rejected", slog.String("error", err.Error()))
			return err
		}

		if attempt == maxAttempts {
			break
		}
		logger.Warn("failure notification retrying",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	logger.Error("failure notification dropped", slog.String("error", lastErr.Error()))
	return lastErr
}
