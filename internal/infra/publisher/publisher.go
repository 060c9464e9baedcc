// Package publisher pushes completed articles to external CMSes. Each
// publisher resolves the owning user's credentials from the settings vault
// at publish time; nothing is cached across calls.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"seoforge/internal/resilience/circuitbreaker"
	"seoforge/internal/resilience/retry"
)

// Publisher target names, used as the cms parameter of the publish
// operation and as the metrics label.
const (
	TargetShopify   = "shopify"
	TargetWordPress = "wordpress"
)

// ErrUnexpectedResponse is returned when a CMS accepts the request but the
// response carries no article identifier.
var ErrUnexpectedResponse = errors.New("cms returned no article id")

// CredentialSource resolves decrypted per-user credentials. Implemented by
// the settings service.
type CredentialSource interface {
	Resolve(ctx context.Context, userID uuid.UUID, keys ...string) (map[string]string, error)
}

// protected wraps a CMS call with the publish circuit breaker and retry
// stack shared by both publishers.
type protected struct {
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func newProtected() protected {
	return protected{
		circuitBreaker: circuitbreaker.New(circuitbreaker.PublisherConfig()),
		retryConfig:    retry.DefaultConfig(),
	}
}

func (p *protected) run(ctx context.Context, name string, fn func() (string, error)) (string, error) {
	var result string
	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		cbResult, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			return fn()
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return fmt.Errorf("%s unavailable: circuit breaker open", name)
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("%s publish failed after retries: %w", name, retryErr)
	}
	return result, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
