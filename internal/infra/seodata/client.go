// Package seodata is the DataForSEO API client. It supplies the bulk and
// precise keyword metrics passes of the enrichment pipeline, SERP result
// pages, and the content-generation helper endpoints (meta tags,
// subtopics).
package seodata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
	"seoforge/internal/resilience/circuitbreaker"
	"seoforge/internal/resilience/retry"
)

const (
	defaultBaseURL = "https://api.dataforseo.com"

	// DataForSEO task status codes.
	statusOK              = 20000
	statusPaymentRequired = 40200

	// The provider caps batch endpoints at 100 keywords.
	maxBatchKeywords = 100
)

var (
	// ErrNoCredentials is returned when neither the user settings nor the
	// environment supply a DataForSEO login.
	ErrNoCredentials = errors.New("dataforseo credentials not configured")
	// ErrPaymentRequired is the provider's out-of-balance task status.
	ErrPaymentRequired = errors.New("dataforseo account has no remaining balance")
)

// Credentials is the Basic auth pair for the provider.
type Credentials struct {
	Login    string
	Password string
}

func (c Credentials) complete() bool {
	return c.Login != "" && c.Password != ""
}

// CredentialSource resolves decrypted per-user credentials. Implemented by
// the settings service.
type CredentialSource interface {
	Resolve(ctx context.Context, userID uuid.UUID, keys ...string) (map[string]string, error)
}

// Config holds client parameters. LocationCode and LanguageCode scope every
// request to one market.
type Config struct {
	BaseURL      string
	LocationCode int
	LanguageCode string
	Timeout      time.Duration

	// RequestsPerSecond paces outgoing calls below the provider's
	// throttling threshold.
	RequestsPerSecond float64
}

// DefaultConfig targets the Japanese market, matching the product's
// audience.
func DefaultConfig() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		LocationCode:      2840,
		LanguageCode:      "ja",
		Timeout:           120 * time.Second,
		RequestsPerSecond: 2,
	}
}

// Client calls the DataForSEO v3 API. All calls share one rate limiter and
// one circuit breaker, since the provider throttles per account.
//
// Credentials are resolved per request: the owning user's vaulted login
// wins, the environment pair is the fallback for users who never stored
// one.
type Client struct {
	source         CredentialSource
	env            Credentials
	config         Config
	httpClient     *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// New creates a DataForSEO client. Either a credential source or a
// complete environment pair must be supplied; with only a source, users
// without stored credentials get ErrNoCredentials at call time.
func New(source CredentialSource, env Credentials, config Config) (*Client, error) {
	if source == nil && !env.complete() {
		return nil, ErrNoCredentials
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		source:         source,
		env:            env,
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SEODataAPIConfig()),
		retryConfig:    retry.SEODataConfig(),
	}, nil
}

// creds resolves the Basic auth pair for one user's request.
func (c *Client) creds(ctx context.Context, userID uuid.UUID) (Credentials, error) {
	if c.source != nil && userID != uuid.Nil {
		resolved, err := c.source.Resolve(ctx, userID,
			entity.SettingDataForSEOLogin,
			entity.SettingDataForSEOPassword,
		)
		if err == nil {
			pair := Credentials{
				Login:    resolved[entity.SettingDataForSEOLogin],
				Password: resolved[entity.SettingDataForSEOPassword],
			}
			if pair.complete() {
				return pair, nil
			}
		}
	}
	if c.env.complete() {
		return c.env, nil
	}
	return Credentials{}, fmt.Errorf("%w for user %s", ErrNoCredentials, userID)
}

// envelope is the common DataForSEO response wrapper. Every endpoint
// returns a task list; live endpoints carry exactly one task.
type envelope struct {
	Tasks []struct {
		StatusCode    int             `json:"status_code"`
		StatusMessage string          `json:"status_message"`
		Result        json.RawMessage `json:"result"`
	} `json:"tasks"`
}

// post sends one task payload to path and returns the raw task result,
// going through the rate limiter, circuit breaker and retry stack.
func (c *Client) post(ctx context.Context, userID uuid.UUID, operation, path string, payload any) (json.RawMessage, error) {
	creds, err := c.creds(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var result json.RawMessage
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doPost(ctx, creds, operation, path, payload)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("dataforseo circuit breaker open, request rejected",
					slog.String("operation", operation),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("dataforseo unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(json.RawMessage)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("dataforseo %s failed after retries: %w", operation, retryErr)
	}
	return result, nil
}

func (c *Client) doPost(ctx context.Context, creds Credentials, operation, path string, payload any) (json.RawMessage, error) {
	// Live endpoints take a single-element task array.
	body, err := json.Marshal([]any{payload})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(creds.Login, creds.Password)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderRequest("dataforseo", operation, false)
		return nil, fmt.Errorf("dataforseo request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderRequest("dataforseo", operation, false)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("dataforseo %s: %s", operation, snippet),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		metrics.RecordProviderRequest("dataforseo", operation, false)
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(env.Tasks) == 0 {
		metrics.RecordProviderRequest("dataforseo", operation, false)
		return nil, fmt.Errorf("dataforseo %s: response contains no tasks", operation)
	}

	task := env.Tasks[0]
	if task.StatusCode != statusOK {
		metrics.RecordProviderRequest("dataforseo", operation, false)
		if task.StatusCode == statusPaymentRequired {
			return nil, fmt.Errorf("%w (operation %s)", ErrPaymentRequired, operation)
		}
		return nil, fmt.Errorf("dataforseo %s: task status %d: %s",
			operation, task.StatusCode, task.StatusMessage)
	}

	metrics.RecordProviderRequest("dataforseo", operation, true)
	slog.DebugContext(ctx, "dataforseo call completed",
		slog.String("operation", operation),
		slog.Duration("duration", time.Since(start)))
	return task.Result, nil
}

func (c *Client) batch(keywords []string) []string {
	if len(keywords) > maxBatchKeywords {
		return keywords[:maxBatchKeywords]
	}
	return keywords
}
