package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"seoforge/pkg/ratelimit"
)

// Endpoint names used to look up rate limit policies. Handlers pass these
// to the middleware; the policy file may override any of them.
const (
	EndpointArticleRead     = "articles.read"
	EndpointArticleCreate   = "articles.create"
	EndpointArticleUpdate   = "articles.update"
	EndpointArticleDelete   = "articles.delete"
	EndpointStartAnalysis   = "articles.start_analysis"
	EndpointSelectKeywords  = "articles.select_keywords"
	EndpointArticlePublish  = "articles.publish"
	EndpointSettingsRead    = "settings.read"
	EndpointSettingsWrite   = "settings.write"
	EndpointAuthToken       = "auth.token"
	EndpointDefaultFallback = "default"
)

// RateLimitConfig holds the resolved rate limiting configuration.
type RateLimitConfig struct {
	Enabled         bool
	MaxKeys         int
	CleanupInterval time.Duration
	Default         ratelimit.Policy
	Endpoints       map[string]ratelimit.Policy
}

// Policy returns the policy for an endpoint, falling back to the default.
func (c *RateLimitConfig) Policy(endpoint string) ratelimit.Policy {
	if p, ok := c.Endpoints[endpoint]; ok {
		return p
	}
	return c.Default
}

// LongestWindow returns the largest configured window, used as the cleanup
// horizon so no live entry is ever dropped early.
func (c *RateLimitConfig) LongestWindow() time.Duration {
	longest := c.Default.Window
	for _, p := range c.Endpoints {
		if p.Window > longest {
			longest = p.Window
		}
	}
	return longest
}

// policyFile mirrors the YAML policy document.
type policyFile struct {
	Enabled         *bool                  `yaml:"enabled"`
	MaxKeys         int                    `yaml:"max_keys"`
	CleanupInterval string                 `yaml:"cleanup_interval"`
	Default         policyEntry            `yaml:"default"`
	Endpoints       map[string]policyEntry `yaml:"endpoints"`
}

type policyEntry struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

// DefaultRateLimitConfig returns the built-in per-endpoint limits.
// Write operations are tight; publishing, which fans out to external CMS
// APIs, gets a five-minute window.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:         true,
		MaxKeys:         10000,
		CleanupInterval: 5 * time.Minute,
		Default:         ratelimit.Policy{Limit: 60, Window: time.Minute},
		Endpoints: map[string]ratelimit.Policy{
			EndpointArticleRead:    {Limit: 30, Window: time.Minute},
			EndpointArticleCreate:  {Limit: 5, Window: time.Minute},
			EndpointArticleUpdate:  {Limit: 20, Window: time.Minute},
			EndpointArticleDelete:  {Limit: 20, Window: time.Minute},
			EndpointStartAnalysis:  {Limit: 10, Window: time.Minute},
			EndpointSelectKeywords: {Limit: 10, Window: time.Minute},
			EndpointArticlePublish: {Limit: 10, Window: 5 * time.Minute},
			EndpointSettingsRead:   {Limit: 30, Window: time.Minute},
			EndpointSettingsWrite:  {Limit: 30, Window: time.Minute},
			EndpointAuthToken:      {Limit: 5, Window: time.Minute},
		},
	}
}

// LoadRateLimitConfig loads rate limiting configuration.
//
// When RATELIMIT_POLICY_FILE names a YAML file, its entries override the
// built-in defaults per endpoint; endpoints not mentioned keep their
// defaults. Invalid entries log a warning and fall back rather than fail.
//
// Environment variables:
//   - RATELIMIT_ENABLED: Enable/disable rate limiting (default: true)
//   - RATELIMIT_POLICY_FILE: Path to the YAML policy file (optional)
func LoadRateLimitConfig() (*RateLimitConfig, error) {
	cfg := DefaultRateLimitConfig()
	cfg.Enabled = GetEnvBool("RATELIMIT_ENABLED", true)

	path := os.Getenv("RATELIMIT_POLICY_FILE")
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate limit policy file: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse rate limit policy file: %w", err)
	}

	if pf.Enabled != nil {
		cfg.Enabled = *pf.Enabled
	}
	if pf.MaxKeys > 0 {
		cfg.MaxKeys = pf.MaxKeys
	}
	if pf.CleanupInterval != "" {
		if d, err := time.ParseDuration(pf.CleanupInterval); err == nil && d > 0 {
			cfg.CleanupInterval = d
		} else {
			slog.Warn("invalid cleanup_interval in rate limit policy, using default",
				slog.String("value", pf.CleanupInterval))
		}
	}
	if p, ok := parsePolicyEntry(EndpointDefaultFallback, pf.Default); ok {
		cfg.Default = p
	}
	for name, entry := range pf.Endpoints {
		if p, ok := parsePolicyEntry(name, entry); ok {
			cfg.Endpoints[name] = p
		}
	}
	return cfg, nil
}

func parsePolicyEntry(name string, e policyEntry) (ratelimit.Policy, bool) {
	if e.Limit == 0 && e.Window == "" {
		return ratelimit.Policy{}, false
	}
	if e.Limit <= 0 {
		slog.Warn("invalid limit in rate limit policy, entry ignored",
			slog.String("endpoint", name),
			slog.Int("limit", e.Limit))
		return ratelimit.Policy{}, false
	}
	d, err := time.ParseDuration(e.Window)
	if err != nil || ValidatePositiveDuration(d) != nil {
		slog.Warn("invalid window in rate limit policy, entry ignored",
			slog.String("endpoint", name),
			slog.String("window", e.Window))
		return ratelimit.Policy{}, false
	}
	return ratelimit.Policy{Limit: e.Limit, Window: d}, true
}
