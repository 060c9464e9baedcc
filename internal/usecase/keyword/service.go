package keyword

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
)

const (
	// MaxCandidates caps the expansion output per run.
	MaxCandidates = 100

	// PreciseTopN is the number of top-scored candidates re-checked with
	// the high-accuracy metrics pass.
	PreciseTopN = 20
)

// Request describes one enrichment run. Seed is the article's main
// keyword; Important are the user's must-include keywords (at most three);
// Secondary are keywords selected in an earlier run, fed back so a re-run
// expands around them instead of repeating them. UserID scopes provider
// credential lookups.
type Request struct {
	UserID    uuid.UUID
	Seed      string
	Target    string
	Important []string
	Secondary []string
}

// Expander produces related keyword candidates for a seed keyword.
// Implementations call a language model.
type Expander interface {
	Expand(ctx context.Context, req Request, limit int) ([]string, error)
}

// MetricsProvider returns search volume and competition metrics.
//
// BulkMetrics covers large keyword sets cheaply; PreciseMetrics is the
// higher-accuracy endpoint used to re-check a small top slice.
type MetricsProvider interface {
	BulkMetrics(ctx context.Context, userID uuid.UUID, keywords []string) ([]entity.KeywordCandidate, error)
	PreciseMetrics(ctx context.Context, userID uuid.UUID, keywords []string) ([]entity.KeywordCandidate, error)
}

// Pipeline runs the two-phase keyword enrichment.
type Pipeline struct {
	Expander Expander
	Provider MetricsProvider
	Log      *slog.Logger
}

// Run expands the seed keyword, scores all candidates against bulk search
// metrics, then re-scores the top candidates with the precise pass.
//
// Expansion and bulk-metrics failures abort the run. A precise-pass failure
// does not: the run completes on bulk metrics alone and the degradation is
// logged and counted.
//
// The returned candidates are ordered by descending total score.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]entity.KeywordCandidate, error) {
	start := time.Now()
	candidates, err := p.run(ctx, req)
	metrics.RecordPipelineRun(err == nil, time.Since(start), len(candidates))
	return candidates, err
}

func (p *Pipeline) run(ctx context.Context, req Request) ([]entity.KeywordCandidate, error) {
	keywords, err := p.Expander.Expand(ctx, req, MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	keywords = normalize(req, keywords)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: expansion returned no candidates", ErrGenerationFailed)
	}

	bulk, err := p.Provider.BulkMetrics(ctx, req.UserID, keywords)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnrichmentUnavailable, err)
	}
	candidates := scoreAll(keywords, bulk)
	entity.SortCandidates(candidates)

	p.refineTop(ctx, req.UserID, candidates)
	entity.SortCandidates(candidates)
	return candidates, nil
}

// refineTop re-checks the strongest candidates against the precise metrics
// endpoint and overwrites their scores in place. Failure leaves the bulk
// scores standing.
func (p *Pipeline) refineTop(ctx context.Context, userID uuid.UUID, candidates []entity.KeywordCandidate) {
	n := PreciseTopN
	if len(candidates) < n {
		n = len(candidates)
	}
	if n == 0 {
		return
	}

	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = candidates[i].Keyword
	}

	precise, err := p.Provider.PreciseMetrics(ctx, userID, top)
	if err != nil {
		p.Log.Warn("precise metrics pass failed, keeping bulk scores",
			slog.Int("candidates", n),
			slog.String("error", err.Error()))
		metrics.RecordPreciseDegraded()
		return
	}

	byKeyword := make(map[string]entity.KeywordCandidate, len(precise))
	for _, c := range precise {
		byKeyword[strings.ToLower(c.Keyword)] = c
	}
	for i := 0; i < n; i++ {
		pc, ok := byKeyword[strings.ToLower(candidates[i].Keyword)]
		if !ok {
			continue
		}
		candidates[i].SearchVolume = pc.SearchVolume
		candidates[i].CompetitionIndex = pc.CompetitionIndex
		candidates[i].CPC = pc.CPC
		candidates[i].Precise = true
		candidates[i].Score()
	}
}

// scoreAll builds scored candidates for every expanded keyword. Keywords
// the provider returned no metrics for score zero rather than dropping out,
// so the user still sees them.
func scoreAll(keywords []string, metrics []entity.KeywordCandidate) []entity.KeywordCandidate {
	byKeyword := make(map[string]entity.KeywordCandidate, len(metrics))
	for _, m := range metrics {
		byKeyword[strings.ToLower(m.Keyword)] = m
	}

	out := make([]entity.KeywordCandidate, 0, len(keywords))
	for _, kw := range keywords {
		c := entity.KeywordCandidate{Keyword: kw}
		if m, ok := byKeyword[strings.ToLower(kw)]; ok {
			c.SearchVolume = m.SearchVolume
			c.CompetitionIndex = m.CompetitionIndex
			c.CPC = m.CPC
		}
		c.Score()
		out = append(out, c)
	}
	return out
}

// normalize trims, dedupes case-insensitively, makes sure the seed and the
// must-include keywords are scored, and enforces the candidate cap.
func normalize(req Request, keywords []string) []string {
	out := make([]string, 0, len(keywords)+1)
	seen := make(map[string]struct{}, len(keywords)+1)

	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return
		}
		lower := strings.ToLower(kw)
		if _, dup := seen[lower]; dup {
			return
		}
		seen[lower] = struct{}{}
		out = append(out, kw)
	}

	add(req.Seed)
	for _, kw := range req.Important {
		add(kw)
	}
	for _, kw := range keywords {
		add(kw)
	}
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}
