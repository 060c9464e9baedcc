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

// WordPress publishes articles through the WordPress REST API using an
// application password.
type WordPress struct {
	Creds      CredentialSource
	HTTPClient *http.Client

	protected
}

// NewWordPress creates the WordPress publisher.
func NewWordPress(creds CredentialSource) *WordPress {
	return &WordPress{
		Creds:      creds,
		HTTPClient: newHTTPClient(),
		protected:  newProtected(),
	}
}

// Publish creates the post on the user's WordPress site and returns the
// post id.
func (w *WordPress) Publish(ctx context.Context, art *entity.Article) (string, error) {
	creds, err := w.Creds.Resolve(ctx, art.UserID,
		entity.SettingWordPressURL,
		entity.SettingWordPressUser,
		entity.SettingWordPressPass,
	)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(creds[entity.SettingWordPressURL], "/") + "/wp-json/wp/v2/posts"

	body, err := json.Marshal(map[string]any{
		"title":          art.Title,
		"content":        art.Content,
		"status":         "publish",
		"comment_status": "closed",
	})
	if err != nil {
		return "", fmt.Errorf("marshal post: %w", err)
	}

	id, err := w.run(ctx, "wordpress", func() (string, error) {
		return w.doPublish(ctx, url,
			creds[entity.SettingWordPressUser], creds[entity.SettingWordPressPass], body)
	})
	metrics.RecordProviderRequest("wordpress", "publish", err == nil)
	return id, err
}

func (w *WordPress) doPublish(ctx context.Context, url, user, pass string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(user, pass)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wordpress request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("wordpress publish: %s", snippet),
		}
	}

	var result struct {
		ID json.Number `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode wordpress response: %w", err)
	}
	if result.ID == "" {
		return "", ErrUnexpectedResponse
	}
	return result.ID.String(), nil
}
