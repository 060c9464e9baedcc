package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/domain/entity"
)

type stubCreds struct {
	values map[string]string
	err    error
}

func (s *stubCreds) Resolve(_ context.Context, _ uuid.UUID, keys ...string) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = s.values[k]
	}
	return out, nil
}

func completedArticle() *entity.Article {
	return &entity.Article{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Title:   "The Home Espresso Guide",
		Content: "<h2>Getting started</h2><p>...</p>",
		Status:  entity.StatusCompleted,
	}
}

func TestShopify_Publish(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"article":{"id":987654321}}`)
	}))
	defer srv.Close()

	pub := NewShopify(&stubCreds{values: map[string]string{
		entity.SettingShopifyDomain: "myshop",
		entity.SettingShopifyToken:  "shpat_token",
		entity.SettingShopifyBlogID: "42",
	}})
	pub.BaseURL = srv.URL

	id, err := pub.Publish(context.Background(), completedArticle())
	require.NoError(t, err)

	assert.Equal(t, "987654321", id)
	assert.Equal(t, "/admin/api/2024-01/blogs/42/articles.json", gotPath)
	assert.Equal(t, "shpat_token", gotToken)
	assert.Equal(t, "The Home Espresso Guide", gotBody["article"]["title"])
	// Always created as a draft for store-owner review.
	assert.Equal(t, false, gotBody["article"]["published"])
}

func TestShopify_Publish_NoArticleID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"article":{}}`)
	}))
	defer srv.Close()

	pub := NewShopify(&stubCreds{values: map[string]string{
		entity.SettingShopifyDomain: "myshop",
		entity.SettingShopifyToken:  "t",
		entity.SettingShopifyBlogID: "1",
	}})
	pub.BaseURL = srv.URL

	_, err := pub.Publish(context.Background(), completedArticle())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestShopify_Publish_CredentialFailure(t *testing.T) {
	pub := NewShopify(&stubCreds{err: fmt.Errorf("credential not configured: shopify_access_token")})

	_, err := pub.Publish(context.Background(), completedArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shopify_access_token")
}

func TestShopify_ShopBase(t *testing.T) {
	pub := NewShopify(nil)

	assert.Equal(t, "https://myshop.myshopify.com", pub.shopBase("myshop"))
	assert.Equal(t, "https://myshop.myshopify.com", pub.shopBase("myshop.myshopify.com"))
	assert.Equal(t, "https://shop.example.com", pub.shopBase("shop.example.com"))
}

func TestWordPress_Publish(t *testing.T) {
	var gotPath string
	var gotUser, gotPass string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":123}`)
	}))
	defer srv.Close()

	pub := NewWordPress(&stubCreds{values: map[string]string{
		entity.SettingWordPressURL:  srv.URL + "/",
		entity.SettingWordPressUser: "admin",
		entity.SettingWordPressPass: "app-pass",
	}})

	id, err := pub.Publish(context.Background(), completedArticle())
	require.NoError(t, err)

	assert.Equal(t, "123", id)
	assert.Equal(t, "/wp-json/wp/v2/posts", gotPath)
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "app-pass", gotPass)
	assert.Equal(t, "publish", gotBody["status"])
	assert.Equal(t, "closed", gotBody["comment_status"])
}

func TestWordPress_Publish_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"code":"rest_cannot_create"}`)
	}))
	defer srv.Close()

	pub := NewWordPress(&stubCreds{values: map[string]string{
		entity.SettingWordPressURL:  srv.URL,
		entity.SettingWordPressUser: "admin",
		entity.SettingWordPressPass: "bad",
	}})

	_, err := pub.Publish(context.Background(), completedArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
