package expander

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
	"seoforge/internal/resilience/circuitbreaker"
	"seoforge/internal/resilience/retry"
	"seoforge/internal/usecase/keyword"
)

// ClaudeConfig holds the model parameters for the Claude expander.
type ClaudeConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultClaudeConfig returns the expander defaults.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 2048,
		Timeout:   60 * time.Second,
	}
}

// Claude expands seed keywords using Anthropic's Claude API. The API key
// is resolved per run: the requesting user's vaulted key wins, the
// environment key is the fallback.
type Claude struct {
	creds          CredentialSource
	envKey         string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ClaudeConfig
}

// NewClaude creates a Claude expander.
func NewClaude(creds CredentialSource, envKey string, config ClaudeConfig) *Claude {
	return &Claude{
		creds:          creds,
		envKey:         envKey,
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		config:         config,
	}
}

// Expand asks the model for related keywords and parses the reply.
func (c *Claude) Expand(ctx context.Context, req keyword.Request, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	apiKey, err := resolveKey(ctx, c.creds, req.UserID, entity.SettingAnthropicAPIKey, c.envKey)
	if err != nil {
		return nil, err
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var result []string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doExpand(ctx, client, req, limit)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.([]string)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("claude expand failed after retries: %w", retryErr)
	}
	return result, nil
}

func (c *Claude) doExpand(ctx context.Context, client anthropic.Client, req keyword.Request, limit int) ([]string, error) {
	start := time.Now()
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(req, limit)),
			),
		},
	})
	duration := time.Since(start)
	metrics.RecordProviderRequest("claude", "expand", err == nil)

	if err != nil {
		slog.ErrorContext(ctx, "keyword expansion failed",
			slog.String("seed", req.Seed),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return nil, fmt.Errorf("claude api returned unexpected response type")
	}

	keywords := parseKeywordList(textBlock.Text, limit)
	slog.InfoContext(ctx, "keyword expansion completed",
		slog.String("seed", req.Seed),
		slog.Int("keywords", len(keywords)),
		slog.Duration("duration", duration))
	return keywords, nil
}
