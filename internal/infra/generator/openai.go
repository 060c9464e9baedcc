package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
	"seoforge/internal/resilience/circuitbreaker"
	"seoforge/internal/resilience/retry"
)

// OpenAIModelConfig holds the model parameters for content generation.
type OpenAIModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// DefaultOpenAIModelConfig returns the generation defaults. Body generation
// needs a large token budget and some temperature.
func DefaultOpenAIModelConfig() OpenAIModelConfig {
	return OpenAIModelConfig{
		Model:       openai.GPT4o,
		MaxTokens:   4096,
		Temperature: 0.8,
		Timeout:     120 * time.Second,
	}
}

// CredentialSource resolves decrypted per-user credentials. Implemented by
// the settings service.
type CredentialSource interface {
	Resolve(ctx context.Context, userID uuid.UUID, keys ...string) (map[string]string, error)
}

// ErrNoAPIKey is returned when neither the user's vault nor the
// environment supplies a model API key.
var ErrNoAPIKey = errors.New("openai api key not configured")

// OpenAIModel implements ContentModel on OpenAI's chat API. The API key is
// resolved per request: the owning user's vaulted key wins, the
// environment key is the fallback.
type OpenAIModel struct {
	creds          CredentialSource
	envKey         string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         OpenAIModelConfig
}

// NewOpenAIModel creates an OpenAI-backed content model.
func NewOpenAIModel(creds CredentialSource, envKey string, config OpenAIModelConfig) *OpenAIModel {
	return &OpenAIModel{
		creds:          creds,
		envKey:         envKey,
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		config:         config,
	}
}

func (m *OpenAIModel) apiKey(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.creds != nil && userID != uuid.Nil {
		resolved, err := m.creds.Resolve(ctx, userID, entity.SettingOpenAIAPIKey)
		if err == nil && resolved[entity.SettingOpenAIAPIKey] != "" {
			return resolved[entity.SettingOpenAIAPIKey], nil
		}
	}
	if m.envKey != "" {
		return m.envKey, nil
	}
	return "", fmt.Errorf("%w for user %s", ErrNoAPIKey, userID)
}

// Complete sends one prompt and returns the model's reply text.
func (m *OpenAIModel) Complete(ctx context.Context, userID uuid.UUID, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	apiKey, err := m.apiKey(ctx, userID)
	if err != nil {
		return "", err
	}
	client := openai.NewClient(apiKey)

	var result string
	retryErr := retry.WithBackoff(ctx, m.retryConfig, func() error {
		cbResult, err := m.circuitBreaker.Execute(func() (interface{}, error) {
			return m.doComplete(ctx, client, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", m.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("openai completion failed after retries: %w", retryErr)
	}
	return result, nil
}

func (m *OpenAIModel) doComplete(ctx context.Context, client *openai.Client, prompt string) (string, error) {
	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.config.Model,
		MaxTokens:   m.config.MaxTokens,
		Temperature: m.config.Temperature,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	duration := time.Since(start)
	metrics.RecordProviderRequest("openai", "complete", err == nil)

	if err != nil {
		slog.ErrorContext(ctx, "content completion failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
