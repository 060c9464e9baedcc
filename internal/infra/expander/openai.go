package expander

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
	"seoforge/internal/resilience/circuitbreaker"
	"seoforge/internal/resilience/retry"
	"seoforge/internal/usecase/keyword"
)

// OpenAIConfig holds the model parameters for the OpenAI expander.
type OpenAIConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultOpenAIConfig returns the expander defaults. A keyword list is
// short, so the token budget stays small.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:     openai.GPT4oMini,
		MaxTokens: 2048,
		Timeout:   60 * time.Second,
	}
}

// OpenAI expands seed keywords using OpenAI's chat API. The API key is
// resolved per run: the requesting user's vaulted key wins, the
// environment key is the fallback.
type OpenAI struct {
	creds          CredentialSource
	envKey         string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         OpenAIConfig
}

// NewOpenAI creates an OpenAI expander.
func NewOpenAI(creds CredentialSource, envKey string, config OpenAIConfig) *OpenAI {
	return &OpenAI{
		creds:          creds,
		envKey:         envKey,
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		config:         config,
	}
}

// Expand asks the model for related keywords and parses the reply.
func (o *OpenAI) Expand(ctx context.Context, req keyword.Request, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	apiKey, err := resolveKey(ctx, o.creds, req.UserID, entity.SettingOpenAIAPIKey, o.envKey)
	if err != nil {
		return nil, err
	}
	client := openai.NewClient(apiKey)

	var result []string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doExpand(ctx, client, req, limit)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.([]string)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("openai expand failed after retries: %w", retryErr)
	}
	return result, nil
}

func (o *OpenAI) doExpand(ctx context.Context, client *openai.Client, req keyword.Request, limit int) ([]string, error) {
	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(req, limit),
		}},
	})
	duration := time.Since(start)
	metrics.RecordProviderRequest("openai", "expand", err == nil)

	if err != nil {
		slog.ErrorContext(ctx, "keyword expansion failed",
			slog.String("seed", req.Seed),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api returned empty response")
	}

	keywords := parseKeywordList(resp.Choices[0].Message.Content, limit)
	slog.InfoContext(ctx, "keyword expansion completed",
		slog.String("seed", req.Seed),
		slog.Int("keywords", len(keywords)),
		slog.Duration("duration", duration))
	return keywords, nil
}
