package seodata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	metaTitleMaxLength       = 60
	metaDescriptionMaxLength = 160

	// The content endpoint rejects very long texts; 5000 chars is enough
	// context for tag generation.
	metaTagsMaxChars = 5000

	subtopicsLimit = 10
)

// MetaTags is the generated SEO title/description pair.
type MetaTags struct {
	Title       string
	Description string
}

// GenerateMetaTags produces a meta title and description for the article
// text via the content generation endpoint.
func (c *Client) GenerateMetaTags(ctx context.Context, userID uuid.UUID, title, content string) (*MetaTags, error) {
	text := content
	if len(text) > metaTagsMaxChars {
		text = text[:metaTagsMaxChars]
	}
	payload := map[string]any{
		"text":                        text,
		"title":                       title,
		"meta_title_max_length":       metaTitleMaxLength,
		"meta_description_max_length": metaDescriptionMaxLength,
	}
	raw, err := c.post(ctx, userID, "meta_tags", "/v3/content_generation/generate_meta_tags/live", payload)
	if err != nil {
		return nil, err
	}

	var results []struct {
		MetaTitle       string `json:"meta_title"`
		MetaDescription string `json:"meta_description"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("GenerateMetaTags: decode result: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("GenerateMetaTags: empty result")
	}
	return &MetaTags{
		Title:       results[0].MetaTitle,
		Description: results[0].MetaDescription,
	}, nil
}

// GenerateSubtopics produces up to ten section subtopics for the keyword.
func (c *Client) GenerateSubtopics(ctx context.Context, userID uuid.UUID, keyword string) ([]string, error) {
	payload := map[string]any{
		"keyword": keyword,
		"limit":   subtopicsLimit,
	}
	raw, err := c.post(ctx, userID, "subtopics", "/v3/content_generation/generate_subtopics/live", payload)
	if err != nil {
		return nil, err
	}

	var results []struct {
		Subtopics []struct {
			Subtopic string `json:"subtopic"`
		} `json:"subtopics"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("GenerateSubtopics: decode result: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	subtopics := make([]string, 0, len(results[0].Subtopics))
	for _, st := range results[0].Subtopics {
		if st.Subtopic != "" {
			subtopics = append(subtopics, st.Subtopic)
		}
	}
	return subtopics, nil
}
