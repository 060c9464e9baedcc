package seodata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
)

// labsEntry is one result row of the Labs keywords_for_keywords endpoint.
// The metrics sit under a nested keyword_info object.
type labsEntry struct {
	KeywordInfo struct {
		Keyword          string  `json:"keyword"`
		SearchVolume     int     `json:"search_volume"`
		CompetitionIndex float64 `json:"competition_index"`
		CPC              float64 `json:"cpc"`
	} `json:"keyword_info"`
}

// BulkMetrics fetches search volume and competition for up to 100 keywords
// in one call via the DataForSEO Labs endpoint. Cheap but approximate; the
// pipeline's broad pass.
func (c *Client) BulkMetrics(ctx context.Context, userID uuid.UUID, keywords []string) ([]entity.KeywordCandidate, error) {
	payload := map[string]any{
		"keywords":          c.batch(keywords),
		"location_code":     c.config.LocationCode,
		"language_code":     c.config.LanguageCode,
		"include_serp_info": true,
		"limit":             20,
	}
	raw, err := c.post(ctx, userID, "bulk_metrics", "/v3/dataforseo_labs/google/keywords_for_keywords/live", payload)
	if err != nil {
		return nil, err
	}

	var entries []labsEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("BulkMetrics: decode result: %w", err)
	}

	candidates := make([]entity.KeywordCandidate, 0, len(entries))
	for _, e := range entries {
		if e.KeywordInfo.Keyword == "" {
			continue
		}
		candidates = append(candidates, entity.KeywordCandidate{
			Keyword:          e.KeywordInfo.Keyword,
			SearchVolume:     e.KeywordInfo.SearchVolume,
			CompetitionIndex: e.KeywordInfo.CompetitionIndex,
			CPC:              e.KeywordInfo.CPC,
		})
	}
	return candidates, nil
}

// adsEntry is one result row of the Google Ads search_volume endpoint,
// which returns the metrics flat.
type adsEntry struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     int     `json:"search_volume"`
	CompetitionIndex float64 `json:"competition_index"`
	CPC              float64 `json:"cpc"`
}

// PreciseMetrics fetches Google Ads backed metrics for up to 100 keywords.
// More accurate and more expensive than BulkMetrics; the pipeline's narrow
// pass over the top candidates.
func (c *Client) PreciseMetrics(ctx context.Context, userID uuid.UUID, keywords []string) ([]entity.KeywordCandidate, error) {
	payload := map[string]any{
		"keywords":      c.batch(keywords),
		"location_code": c.config.LocationCode,
		"language_code": c.config.LanguageCode,
		"sort_by":       "relevance",
	}
	raw, err := c.post(ctx, userID, "precise_metrics", "/v3/keywords_data/google_ads/search_volume/live", payload)
	if err != nil {
		return nil, err
	}

	var entries []adsEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("PreciseMetrics: decode result: %w", err)
	}

	candidates := make([]entity.KeywordCandidate, 0, len(entries))
	for _, e := range entries {
		if e.Keyword == "" {
			continue
		}
		candidates = append(candidates, entity.KeywordCandidate{
			Keyword:          e.Keyword,
			SearchVolume:     e.SearchVolume,
			CompetitionIndex: e.CompetitionIndex,
			CPC:              e.CPC,
		})
	}
	return candidates, nil
}
