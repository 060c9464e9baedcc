package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
	"seoforge/internal/resilience/retry"
)

const shopifyAPIVersion = "2024-01"

// Shopify publishes articles to a Shopify blog as drafts, so the store
// owner reviews before going live.
type Shopify struct {
	Creds      CredentialSource
	HTTPClient *http.Client

	// BaseURL overrides the https://<shop-domain> prefix. Tests point it
	// at a local server.
	BaseURL string

	protected
}

// NewShopify creates the Shopify publisher.
func NewShopify(creds CredentialSource) *Shopify {
	return &Shopify{
		Creds:      creds,
		HTTPClient: newHTTPClient(),
		protected:  newProtected(),
	}
}

// Publish creates the article on the user's Shopify blog and returns the
// Shopify article id.
func (s *Shopify) Publish(ctx context.Context, art *entity.Article) (string, error) {
	creds, err := s.Creds.Resolve(ctx, art.UserID,
		entity.SettingShopifyDomain,
		entity.SettingShopifyToken,
		entity.SettingShopifyBlogID,
	)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/admin/api/%s/blogs/%s/articles.json",
		s.shopBase(creds[entity.SettingShopifyDomain]),
		shopifyAPIVersion,
		creds[entity.SettingShopifyBlogID],
	)

	body, err := json.Marshal(map[string]any{
		"article": map[string]any{
			"title":     art.Title,
			"body_html": art.Content,
			"tags":      "Column",
			"published": false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal article: %w", err)
	}

	id, err := s.run(ctx, "shopify", func() (string, error) {
		return s.doPublish(ctx, url, creds[entity.SettingShopifyToken], body)
	})
	metrics.RecordProviderRequest("shopify", "publish", err == nil)
	return id, err
}

func (s *Shopify) doPublish(ctx context.Context, url, token string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shopify request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("shopify publish: %s", snippet),
		}
	}

	var result struct {
		Article struct {
			ID json.Number `json:"id"`
		} `json:"article"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode shopify response: %w", err)
	}
	if result.Article.ID == "" {
		return "", ErrUnexpectedResponse
	}
	return result.Article.ID.String(), nil
}

// shopBase normalizes the configured shop domain to a full URL. Bare shop
// names get the myshopify.com suffix.
func (s *Shopify) shopBase(domain string) string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	if !strings.HasSuffix(domain, ".com") {
		domain += ".myshopify.com"
	}
	return "https://" + domain
}
