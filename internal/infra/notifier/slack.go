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

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// WebhookURL is the Slack Incoming Webhook URL (includes the token).
	WebhookURL string
	// Timeout is the HTTP request timeout for Slack API calls.
	Timeout time.Duration
}

// SlackNotifier sends failure events to Slack via Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseDelay   time.Duration
}

// NewSlackNotifier creates a SlackNotifier. The rate limiter follows the
// Slack webhook limit of 1 message per second.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SlackNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
		baseDelay:   5 * time.Second,
	}
}

// slackPayload is the Block Kit payload sent to the webhook.
type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	// Block Kit limits.
	maxSectionTextRunes = 3000
	maxFallbackRunes    = 150

	slackTruncationSuffix = "..."
)

func (s *SlackNotifier) buildPayload(ev Event) slackPayload {
	fallback := truncateRunes(
		fmt.Sprintf("article failure: %s (%s)", ev.Keyword, ev.Kind),
		maxFallbackRunes, slackTruncationSuffix)

	section := fmt.Sprintf("*Article %s failed during %s*\nkeyword: %s\n\n%s",
		ev.ArticleID, ev.Kind, ev.Keyword, ev.Detail)
	section = truncateRunes(section, maxSectionTextRunes, slackTruncationSuffix)

	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	return slackPayload{
		Text: fallback,
		Blocks: []slackBlock{
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []slackText{
				{Type: "mrkdwn", Text: occurred.UTC().Format(time.RFC3339)},
			}},
		},
	}
}

func (s *SlackNotifier) send(ctx context.Context, ev Event) error {
	jsonData, err := json.Marshal(s.buildPayload(ev))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
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
			Message:    "Slack rate limit exceeded",
			RetryAfter: retryAfterFromHeader(resp, 5*time.Second),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API client error: %s", string(body)),
		}
	default:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API server error: %s", string(body)),
		}
	}
}

// NotifyFailure delivers the event, retrying once on transient failures.
// Client errors fail immediately; 429s wait out the advertised retry delay.
func (s *SlackNotifier) NotifyFailure(ctx context.Context, ev Event) error {
	const maxAttempts = 2

	requestID := uuid.NewString()
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.String("article_id", ev.ArticleID.String()),
		slog.String("channel", "slack"))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("slack rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.send(ctx, ev)
		if err == nil {
			logger.Info("failure notification sent", slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		delay := s.baseDelay * time.Duration(attempt)
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
