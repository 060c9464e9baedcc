package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/domain/entity"
	"seoforge/internal/infra/seodata"
	"seoforge/internal/infra/serp"
)

type stubModel struct {
	replies map[string]string // substring of prompt -> reply
	err     error
	prompts []string
}

func (m *stubModel) Complete(_ context.Context, _ uuid.UUID, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	for marker, reply := range m.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "generated text", nil
}

type stubSerp struct {
	analysis *serp.Analysis
	err      error
}

func (s *stubSerp) Analyze(_ context.Context, _ uuid.UUID, _ string) (*serp.Analysis, error) {
	return s.analysis, s.err
}

type stubHelper struct {
	tags         *seodata.MetaTags
	tagsErr      error
	subtopics    []string
	subtopicsErr error
}

func (h *stubHelper) GenerateMetaTags(_ context.Context, _ uuid.UUID, _, _ string) (*seodata.MetaTags, error) {
	return h.tags, h.tagsErr
}

func (h *stubHelper) GenerateSubtopics(_ context.Context, _ uuid.UUID, _ string) ([]string, error) {
	return h.subtopics, h.subtopicsErr
}

func testArticle() *entity.Article {
	return &entity.Article{
		UserID:            uuid.New(),
		Keyword:           "home espresso",
		Target:            "beginners",
		ArticleType:       "guide",
		ImportantKeywords: []string{"crema quality"},
		SelectedKeywords:  []string{"espresso grinder", "tamper"},
	}
}

func TestGenerator_Generate(t *testing.T) {
	model := &stubModel{replies: map[string]string{
		"タイトル案": "「自宅エスプレッソ入門ガイド」",
		"記事本文":  "## はじめに\n本文です。",
	}}
	analysis := &serp.Analysis{
		Structure: entity.SerpStructure{
			HeadingPatterns: map[string]int{"how_to": 3},
			FAQItems:        []string{"What grinder do I need?"},
			TotalResults:    20,
		},
		Competitors: []serp.CompetitorPage{
			{Title: "Competitor A", Headings: []string{"Choosing a machine"}, TextLength: 4000},
		},
	}
	g := &Generator{
		Model: model,
		Serp:  &stubSerp{analysis: analysis},
		Helper: &stubHelper{
			tags:      &seodata.MetaTags{Title: "Meta T", Description: "Meta D"},
			subtopics: []string{"grinders", "tampers"},
		},
		Log: slog.Default(),
	}

	out, err := g.Generate(context.Background(), testArticle())
	require.NoError(t, err)

	assert.Equal(t, "自宅エスプレッソ入門ガイド", out.Title)
	assert.Equal(t, "## はじめに\n本文です。", out.Content)
	assert.Equal(t, "Meta T", out.MetaTitle)
	assert.Equal(t, "Meta D", out.MetaDescription)
	assert.Equal(t, []string{"grinders", "tampers"}, out.Subtopics)
	require.NotNil(t, out.Serp)
	assert.Equal(t, 20, out.Serp.TotalResults)

	// The body prompt carries the competitor context.
	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[1], "Choosing a machine")
	assert.Contains(t, model.prompts[1], "What grinder do I need?")
	assert.Contains(t, model.prompts[1], "espresso grinder")

	// Important keywords reach both the title and the body prompt.
	assert.Contains(t, model.prompts[0], "crema quality")
	assert.Contains(t, model.prompts[1], "crema quality")
}

func TestGenerator_Generate_ModelFailureIsFatal(t *testing.T) {
	g := &Generator{
		Model: &stubModel{err: errors.New("model down")},
		Log:   slog.Default(),
	}

	_, err := g.Generate(context.Background(), testArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate title")
}

func TestGenerator_Generate_ExtrasDegradeGracefully(t *testing.T) {
	model := &stubModel{replies: map[string]string{
		"タイトル案": "Title",
		"記事本文":  "Body",
	}}
	g := &Generator{
		Model: model,
		Serp:  &stubSerp{err: errors.New("serp unavailable")},
		Helper: &stubHelper{
			tagsErr:      errors.New("meta endpoint down"),
			subtopicsErr: errors.New("subtopics endpoint down"),
		},
		Log: slog.Default(),
	}

	out, err := g.Generate(context.Background(), testArticle())
	require.NoError(t, err)

	assert.Equal(t, "Title", out.Title)
	assert.Equal(t, "Body", out.Content)
	assert.Nil(t, out.Serp)
	assert.Empty(t, out.Subtopics)
	assert.Empty(t, out.MetaTitle)
}

func TestGenerator_Generate_EmptyTitleFails(t *testing.T) {
	g := &Generator{
		Model: &stubModel{replies: map[string]string{"タイトル案": "  "}},
		Log:   slog.Default(),
	}

	_, err := g.Generate(context.Background(), testArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty title")
}

func TestTargetLength(t *testing.T) {
	tests := []struct {
		name     string
		analysis *serp.Analysis
		want     int
	}{
		{"no analysis", nil, 3000},
		{"no competitors", &serp.Analysis{}, 3000},
		{
			"average of competitors",
			&serp.Analysis{Competitors: []serp.CompetitorPage{
				{TextLength: 2000}, {TextLength: 4000},
			}},
			3000,
		},
		{
			"clamped low",
			&serp.Analysis{Competitors: []serp.CompetitorPage{{TextLength: 200}}},
			1500,
		},
		{
			"clamped high",
			&serp.Analysis{Competitors: []serp.CompetitorPage{{TextLength: 20000}}},
			8000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetLength(tt.analysis))
		})
	}
}
