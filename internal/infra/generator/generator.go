// Package generator synthesizes the article content for the processing
// phase: SERP-informed title and body generation through a language model,
// plus SEO meta tags and subtopics from the data provider.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
	"seoforge/internal/infra/seodata"
	"seoforge/internal/infra/serp"
	"seoforge/internal/usecase/article"
)

// ContentModel is the language model behind title and body generation.
type ContentModel interface {
	Complete(ctx context.Context, userID uuid.UUID, prompt string) (string, error)
}

// SerpAnalyzer supplies the competitive analysis for the seed keyword.
type SerpAnalyzer interface {
	Analyze(ctx context.Context, userID uuid.UUID, keyword string) (*serp.Analysis, error)
}

// SEOHelper supplies meta tags and subtopics. Implemented by
// seodata.Client.
type SEOHelper interface {
	GenerateMetaTags(ctx context.Context, userID uuid.UUID, title, content string) (*seodata.MetaTags, error)
	GenerateSubtopics(ctx context.Context, userID uuid.UUID, keyword string) ([]string, error)
}

// Generator implements the orchestrator's content generation step.
//
// Title and body generation are load-bearing: their failure fails the run.
// The SEO extras (SERP structure, subtopics, meta tags) degrade
// gracefully; the article ships without them rather than failing.
type Generator struct {
	Model  ContentModel
	Serp   SerpAnalyzer
	Helper SEOHelper
	Log    *slog.Logger
}

// Generate produces the full content package for an article in processing.
func (g *Generator) Generate(ctx context.Context, art *entity.Article) (*article.GeneratedContent, error) {
	out := &article.GeneratedContent{}

	var analysis *serp.Analysis
	if g.Serp != nil {
		var err error
		analysis, err = g.Serp.Analyze(ctx, art.UserID, art.Keyword)
		if err != nil {
			g.Log.Warn("serp analysis unavailable, generating without it",
				slog.String("keyword", art.Keyword),
				slog.String("error", err.Error()))
		} else {
			structure := analysis.Structure
			out.Serp = &structure
		}
	}

	if g.Helper != nil {
		subtopics, err := g.Helper.GenerateSubtopics(ctx, art.UserID, art.Keyword)
		if err != nil {
			g.Log.Warn("subtopic generation failed",
				slog.String("keyword", art.Keyword),
				slog.String("error", err.Error()))
		} else {
			out.Subtopics = subtopics
		}
	}

	title, err := g.Model.Complete(ctx, art.UserID, titlePrompt(art, analysis))
	if err != nil {
		return nil, fmt.Errorf("generate title: %w", err)
	}
	out.Title = strings.Trim(strings.TrimSpace(title), `"「」`)
	if out.Title == "" {
		return nil, fmt.Errorf("generate title: model returned empty title")
	}

	content, err := g.Model.Complete(ctx, art.UserID, contentPrompt(art, out.Title, out.Subtopics, analysis))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	out.Content = strings.TrimSpace(content)
	if out.Content == "" {
		return nil, fmt.Errorf("generate content: model returned empty body")
	}

	if g.Helper != nil {
		tags, err := g.Helper.GenerateMetaTags(ctx, art.UserID, out.Title, out.Content)
		if err != nil {
			g.Log.Warn("meta tag generation failed",
				slog.String("keyword", art.Keyword),
				slog.String("error", err.Error()))
		} else {
			out.MetaTitle = tags.Title
			out.MetaDescription = tags.Description
		}
	}

	return out, nil
}

const defaultTargetLength = 3000

// targetLength derives the body length target from the competitors'
// readable text, clamped to a sane band.
func targetLength(analysis *serp.Analysis) int {
	if analysis == nil || len(analysis.Competitors) == 0 {
		return defaultTargetLength
	}
	var total int
	for _, c := range analysis.Competitors {
		total += c.TextLength
	}
	avg := total / len(analysis.Competitors)
	switch {
	case avg < 1500:
		return 1500
	case avg > 8000:
		return 8000
	default:
		return avg
	}
}

func titlePrompt(art *entity.Article, analysis *serp.Analysis) string {
	var b strings.Builder
	b.WriteString("あなたは優秀なコンテンツマーケターです。以下の条件で魅力的な記事タイトル案を1つだけ出力してください。\n")
	fmt.Fprintf(&b, "- メインキーワード: %s\n", art.Keyword)
	if len(art.ImportantKeywords) > 0 {
		fmt.Fprintf(&b, "- 必ず意識すべき重要キーワード: %s\n", strings.Join(art.ImportantKeywords, "、"))
	}
	if art.Target != "" {
		fmt.Fprintf(&b, "- ターゲット読者: %s\n", art.Target)
	}
	if art.ArticleType != "" {
		fmt.Fprintf(&b, "- 記事タイプ: %s\n", art.ArticleType)
	}
	if len(art.SelectedKeywords) > 0 {
		fmt.Fprintf(&b, "- 含めるべき関連キーワード: %s\n", strings.Join(art.SelectedKeywords, "、"))
	}
	b.WriteString("- 文字数: 15〜40文字\n")
	if analysis != nil && len(analysis.Competitors) > 0 {
		b.WriteString("\n上位表示されている競合記事のタイトル:\n")
		for _, c := range analysis.Competitors {
			fmt.Fprintf(&b, "- %s\n", c.Title)
		}
	}
	b.WriteString("\nタイトルのみを出力してください。")
	return b.String()
}

func contentPrompt(art *entity.Article, title string, subtopics []string, analysis *serp.Analysis) string {
	var b strings.Builder
	b.WriteString("あなたは経験豊富なコンテンツライターです。以下のタイトルに基づいてSEOに強い記事本文をMarkdownで生成してください。\n\n")
	fmt.Fprintf(&b, "# タイトル\n%s\n\n", title)
	fmt.Fprintf(&b, "# 必須キーワード\n%s\n", art.Keyword)
	if len(art.ImportantKeywords) > 0 {
		fmt.Fprintf(&b, "# 重要キーワード（本文に必ず盛り込むこと）\n%s\n", strings.Join(art.ImportantKeywords, "、"))
	}
	if len(art.SelectedKeywords) > 0 {
		fmt.Fprintf(&b, "# 関連キーワード\n%s\n", strings.Join(art.SelectedKeywords, "、"))
	}
	if art.Target != "" {
		fmt.Fprintf(&b, "# ターゲット読者\n%s\n", art.Target)
	}
	if len(subtopics) > 0 {
		fmt.Fprintf(&b, "# 推奨サブトピック\n- %s\n", strings.Join(subtopics, "\n- "))
	}
	if analysis != nil {
		if headings := competitorHeadings(analysis, 15); len(headings) > 0 {
			fmt.Fprintf(&b, "# 競合記事でよく使われる見出し\n- %s\n", strings.Join(headings, "\n- "))
		}
		if len(analysis.Structure.FAQItems) > 0 {
			fmt.Fprintf(&b, "# 読者のよくある質問（FAQセクションで回答すること）\n- %s\n",
				strings.Join(analysis.Structure.FAQItems, "\n- "))
		}
	}
	fmt.Fprintf(&b, "\n# 生成条件\n- 目安文字数: %d文字\n- 導入、本文（複数の見出し）、まとめの構成\n- 見出しは ## と ### を使用\n", targetLength(analysis))
	return b.String()
}

func competitorHeadings(analysis *serp.Analysis, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range analysis.Competitors {
		for _, h := range c.Headings {
			key := strings.ToLower(strings.TrimSpace(h))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, strings.TrimSpace(h))
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
