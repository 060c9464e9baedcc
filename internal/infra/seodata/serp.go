package seodata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const serpDepth = 50

// SerpItem is one entry of a Google results page. Organic entries carry
// Title/URL/Snippet; people_also_ask entries carry Questions.
type SerpItem struct {
	Type      string
	Title     string
	URL       string
	Snippet   string
	Questions []string
}

// SerpPage is the fetched results page for one keyword.
type SerpPage struct {
	Keyword string
	Items   []SerpItem
}

// Organic returns only the organic result items.
func (p *SerpPage) Organic() []SerpItem {
	out := make([]SerpItem, 0, len(p.Items))
	for _, it := range p.Items {
		if it.Type == "organic" {
			out = append(out, it)
		}
	}
	return out
}

// FetchSerp retrieves the live Google results page for the keyword.
func (c *Client) FetchSerp(ctx context.Context, userID uuid.UUID, keyword string) (*SerpPage, error) {
	payload := map[string]any{
		"keyword":              keyword,
		"location_code":        c.config.LocationCode,
		"language_code":        c.config.LanguageCode,
		"device":               "mobile",
		"depth":                serpDepth,
		"calculate_rectangles": true,
		"include_serp_info":    true,
		"include_subdomains":   true,
	}
	raw, err := c.post(ctx, userID, "serp", "/v3/serp/google/organic/advanced/live", payload)
	if err != nil {
		return nil, err
	}

	var results []struct {
		Items []struct {
			Type    string `json:"type"`
			Title   string `json:"title"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
			Items   []struct {
				Question string `json:"question"`
			} `json:"items"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("FetchSerp: decode result: %w", err)
	}
	if len(results) == 0 {
		return &SerpPage{Keyword: keyword}, nil
	}

	page := &SerpPage{
		Keyword: keyword,
		Items:   make([]SerpItem, 0, len(results[0].Items)),
	}
	for _, it := range results[0].Items {
		item := SerpItem{
			Type:    it.Type,
			Title:   it.Title,
			URL:     it.URL,
			Snippet: it.Snippet,
		}
		for _, q := range it.Items {
			if q.Question != "" {
				item.Questions = append(item.Questions, q.Question)
			}
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}
