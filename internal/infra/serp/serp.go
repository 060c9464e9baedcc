// Package serp analyzes Google results pages for a keyword: the shape of
// the competition (heading patterns, FAQ questions, title lengths) and the
// structure of the top-ranking competitor pages themselves.
package serp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"seoforge/internal/domain/entity"
	"seoforge/internal/infra/seodata"
)

var (
	// ErrInvalidURL is returned for competitor URLs that fail validation.
	ErrInvalidURL = errors.New("invalid url")
	// ErrBodyTooLarge is returned when a competitor page exceeds the
	// configured size limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Source supplies the raw results page. Implemented by seodata.Client.
type Source interface {
	FetchSerp(ctx context.Context, userID uuid.UUID, keyword string) (*seodata.SerpPage, error)
}

// CompetitorPage is the extracted structure of one top-ranking page.
type CompetitorPage struct {
	URL        string
	Title      string
	Headings   []string
	TextLength int
}

// Analysis is the combined result of one SERP analysis run.
type Analysis struct {
	Structure   entity.SerpStructure
	Competitors []CompetitorPage
}

// Config controls the competitor fetch pass.
type Config struct {
	// TopPages is how many organic results to fetch and inspect.
	TopPages int
	// Parallelism bounds concurrent page fetches.
	Parallelism int
	// Timeout applies per page fetch.
	Timeout time.Duration
	// MaxBodySize rejects oversized competitor pages.
	MaxBodySize int64
	// DenyPrivateIPs blocks fetches resolving to private addresses.
	DenyPrivateIPs bool
}

// DefaultConfig returns the competitor fetch defaults.
func DefaultConfig() Config {
	return Config{
		TopPages:       5,
		Parallelism:    3,
		Timeout:        10 * time.Second,
		MaxBodySize:    10 << 20,
		DenyPrivateIPs: true,
	}
}

// Analyzer runs the SERP analysis.
type Analyzer struct {
	Source  Source
	Fetcher *PageFetcher
	Config  Config
	Log     *slog.Logger
}

// NewAnalyzer creates an Analyzer over the given source.
func NewAnalyzer(source Source, config Config, log *slog.Logger) *Analyzer {
	return &Analyzer{
		Source:  source,
		Fetcher: NewPageFetcher(config),
		Config:  config,
		Log:     log,
	}
}

// Analyze fetches the results page for the keyword, derives its structure
// and inspects the top organic competitors in parallel. A single competitor
// page failing to fetch does not fail the run.
func (a *Analyzer) Analyze(ctx context.Context, userID uuid.UUID, keyword string) (*Analysis, error) {
	page, err := a.Source.FetchSerp(ctx, userID, keyword)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{Structure: BuildStructure(page)}

	organic := page.Organic()
	if len(organic) > a.Config.TopPages {
		organic = organic[:a.Config.TopPages]
	}

	results := make([]*CompetitorPage, len(organic))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Parallelism)
	for i, item := range organic {
		g.Go(func() error {
			cp, err := a.Fetcher.Fetch(gctx, item.URL)
			if err != nil {
				a.Log.Warn("competitor page fetch failed",
					slog.String("url", item.URL),
					slog.String("error", err.Error()))
				return nil
			}
			if cp.Title == "" {
				cp.Title = item.Title
			}
			results[i] = cp
			return nil
		})
	}
	// Workers only log failures; the error is always nil.
	_ = g.Wait()

	analysis.Competitors = make([]CompetitorPage, 0, len(results))
	for _, cp := range results {
		if cp != nil {
			analysis.Competitors = append(analysis.Competitors, *cp)
		}
	}
	return analysis, nil
}
