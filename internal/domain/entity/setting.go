package entity

import (
	"time"

	"github.com/google/uuid"
)

// Well-known setting keys. Users may store arbitrary keys; the ones listed
// here are the credentials the pipeline and publishers look up.
const (
	SettingOpenAIAPIKey       = "openai_api_key"
	SettingGeminiAPIKey       = "gemini_api_key"
	SettingAnthropicAPIKey    = "anthropic_api_key"
	SettingDataForSEOLogin    = "dataforseo_login"
	SettingDataForSEOPassword = "dataforseo_password"
	SettingShopifyDomain      = "shopify_domain"
	SettingShopifyToken       = "shopify_access_token"
	SettingShopifyBlogID      = "shopify_blog_id"
	SettingWordPressURL       = "wordpress_url"
	SettingWordPressUser      = "wordpress_user"
	SettingWordPressPass      = "wordpress_pass"
)

// sensitiveSettingKeys are encrypted at rest and masked on read-back.
var sensitiveSettingKeys = map[string]struct{}{
	SettingOpenAIAPIKey:       {},
	SettingGeminiAPIKey:       {},
	SettingAnthropicAPIKey:    {},
	SettingDataForSEOLogin:    {},
	SettingDataForSEOPassword: {},
	SettingShopifyToken:       {},
	SettingWordPressPass:      {},
}

// SensitiveSetting reports whether values stored under key must be
// encrypted before persistence and masked in API responses.
func SensitiveSetting(key string) bool {
	_, ok := sensitiveSettingKeys[key]
	return ok
}

// MaskedValue is returned in place of a sensitive setting's plaintext.
const MaskedValue = "********"

// Setting is one user-scoped configuration value. Value holds plaintext in
// memory; the persistence layer stores sensitive values encrypted.
type Setting struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the required fields for a setting write.
func (s *Setting) Validate() error {
	if s.UserID == uuid.Nil {
		return &ValidationError{Field: "userID", Message: "is required"}
	}
	if s.Key == "" {
		return &ValidationError{Field: "key", Message: "is required"}
	}
	return nil
}
