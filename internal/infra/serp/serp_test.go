package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/infra/seodata"
)

func TestBuildStructure(t *testing.T) {
	page := &seodata.SerpPage{
		Keyword: "espresso",
		Items: []seodata.SerpItem{
			{Type: "organic", Title: "エスプレッソとは？初心者向け解説"},
			{Type: "organic", Title: "エスプレッソマシンの選び方とおすすめランキング"},
			{Type: "organic", Title: "Espresso vs Drip: full comparison"},
			{Type: "people_also_ask", Questions: []string{"エスプレッソとは何ですか？", "What grinder do I need?"}},
			{Type: "featured_snippet", Title: "ignored"},
		},
	}

	s := BuildStructure(page)

	assert.Equal(t, 5, s.TotalResults)
	assert.Equal(t, 1, s.HeadingPatterns[PatternDefinition])
	assert.Equal(t, 1, s.HeadingPatterns[PatternHowTo])
	assert.Equal(t, 1, s.HeadingPatterns[PatternRecommendation])
	assert.Equal(t, 1, s.HeadingPatterns[PatternComparison])
	assert.Equal(t, []string{"エスプレッソとは何ですか？", "What grinder do I need?"}, s.FAQItems)
	assert.Greater(t, s.AvgTitleLength, 0.0)
}

func TestBuildStructure_FAQCapped(t *testing.T) {
	questions := make([]string, 15)
	for i := range questions {
		questions[i] = fmt.Sprintf("question %d", i)
	}
	page := &seodata.SerpPage{
		Items: []seodata.SerpItem{{Type: "people_also_ask", Questions: questions}},
	}

	s := BuildStructure(page)
	assert.Len(t, s.FAQItems, 10)
}

func TestBuildStructure_Empty(t *testing.T) {
	s := BuildStructure(&seodata.SerpPage{})

	assert.Equal(t, 0, s.TotalResults)
	assert.Equal(t, 0.0, s.AvgTitleLength)
	assert.Empty(t, s.FAQItems)
}

func TestPageFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Best Espresso Machines 2026</title></head>
<body>
<h1>Best Espresso Machines</h1>
<article>
<h2>How to choose</h2>
<p>`+strings.Repeat("A long paragraph about espresso machines. ", 50)+`</p>
<h3>Budget picks</h3>
<p>More content here about budget espresso machines and grinders.</p>
</article>
</body></html>`)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false // test server runs on loopback
	f := NewPageFetcher(cfg)

	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Best Espresso Machines 2026", page.Title)
	assert.Equal(t, []string{"Best Espresso Machines", "How to choose", "Budget picks"}, page.Headings)
	assert.Greater(t, page.TextLength, 100)
}

func TestPageFetcher_RejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 2048))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false
	cfg.MaxBodySize = 1024
	f := NewPageFetcher(cfg)

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestPageFetcher_RejectsNonHTTPScheme(t *testing.T) {
	f := NewPageFetcher(DefaultConfig())

	_, err := f.Fetch(context.Background(), "ftp://example.com/page")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestPageFetcher_BlocksLoopback(t *testing.T) {
	f := NewPageFetcher(DefaultConfig()) // DenyPrivateIPs enabled

	_, err := f.Fetch(context.Background(), "http://127.0.0.1/admin")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

type stubSource struct {
	page *seodata.SerpPage
	err  error
}

func (s *stubSource) FetchSerp(_ context.Context, _ uuid.UUID, _ string) (*seodata.SerpPage, error) {
	return s.page, s.err
}

func TestAnalyzer_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Competitor</title></head><body><h2>Section</h2></body></html>`)
	}))
	defer srv.Close()

	source := &stubSource{page: &seodata.SerpPage{
		Keyword: "espresso",
		Items: []seodata.SerpItem{
			{Type: "organic", Title: "A", URL: srv.URL + "/a"},
			{Type: "organic", Title: "B", URL: srv.URL + "/b"},
			{Type: "organic", Title: "C", URL: "http://unreachable.invalid/"},
		},
	}}

	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false
	a := NewAnalyzer(source, cfg, slog.Default())

	analysis, err := a.Analyze(context.Background(), uuid.New(), "espresso")
	require.NoError(t, err)

	assert.Equal(t, 3, analysis.Structure.TotalResults)
	// The unreachable competitor is skipped, not fatal.
	require.Len(t, analysis.Competitors, 2)
	assert.Equal(t, []string{"Section"}, analysis.Competitors[0].Headings)
}

func TestAnalyzer_Analyze_TopPagesLimit(t *testing.T) {
	var fetched int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched++
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer srv.Close()

	items := make([]seodata.SerpItem, 10)
	for i := range items {
		items[i] = seodata.SerpItem{Type: "organic", URL: fmt.Sprintf("%s/%d", srv.URL, i)}
	}
	source := &stubSource{page: &seodata.SerpPage{Items: items}}

	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false
	cfg.TopPages = 2
	cfg.Parallelism = 1
	a := NewAnalyzer(source, cfg, slog.Default())

	_, err := a.Analyze(context.Background(), uuid.New(), "espresso")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched)
}
