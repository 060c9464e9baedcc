package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/common/pagination"
	"seoforge/internal/domain/entity"
	"seoforge/internal/observability/metrics"
	"seoforge/internal/repository"
	"seoforge/internal/usecase/keyword"
)

// maxErrorMessageLen caps the failure text stored on the article and in the
// history, so a multi-megabyte provider response cannot bloat the row.
const maxErrorMessageLen = 1000

// Job kinds handled by the background runner.
const (
	JobKeywordAnalysis = "keyword_analysis"
	JobGeneration      = "generation"
)

// JobQueue hands work to the background runner. Enqueueing must not block
// on job execution.
type JobQueue interface {
	Enqueue(kind string, articleID uuid.UUID) error
}

// Enricher runs the keyword enrichment pipeline for an article's keyword
// request.
type Enricher interface {
	Run(ctx context.Context, req keyword.Request) ([]entity.KeywordCandidate, error)
}

// GeneratedContent is the output of one content generation run.
type GeneratedContent struct {
	Title           string
	Content         string
	MetaTitle       string
	MetaDescription string
	Subtopics       []string
	Serp            *entity.SerpStructure
}

// Generator produces the article body and SEO metadata from the article's
// selected keywords.
type Generator interface {
	Generate(ctx context.Context, a *entity.Article) (*GeneratedContent, error)
}

// Publisher pushes a completed article to an external CMS and returns the
// identifier the CMS assigned.
type Publisher interface {
	Publish(ctx context.Context, a *entity.Article) (externalID string, err error)
}

// CreateInput represents the input parameters for creating a new article.
type CreateInput struct {
	UserID            uuid.UUID
	Keyword           string
	Target            string
	ArticleType       string
	ImportantKeywords []string
}

// UpdateInput represents the input parameters for updating an article.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Keyword           *string
	Target            *string
	ArticleType       *string
	Title             *string
	ImportantKeywords []string
}

// PaginatedResult represents the result of a paginated listing.
type PaginatedResult struct {
	Data       []*entity.Article
	Pagination pagination.Metadata
}

// Service orchestrates the article lifecycle. HTTP handlers call the
// user-facing operations; the background runner calls RunAnalysis and
// RunGeneration.
type Service struct {
	Repo       repository.ArticleRepository
	History    repository.HistoryRepository
	Jobs       JobQueue
	Enricher   Enricher
	Generator  Generator
	Publishers map[string]Publisher
	Log        *slog.Logger
}

// Create stores a new draft article. Duplicate seed keywords are allowed:
// users legitimately re-run analyses for the same keyword.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Article, error) {
	now := time.Now().UTC()
	art := &entity.Article{
		ID:                uuid.New(),
		UserID:            in.UserID,
		Keyword:           strings.TrimSpace(in.Keyword),
		Target:            strings.TrimSpace(in.Target),
		ArticleType:       strings.TrimSpace(in.ArticleType),
		ImportantKeywords: trimKeywords(in.ImportantKeywords),
		Status:            entity.StatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := art.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, art); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.record(ctx, art, entity.ActionCreated, "article created")
	return art, nil
}

// Get retrieves one article owned by the user. For failed articles whose
// error message was lost to a later transition, the most recent failure is
// reconstructed from the history.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Article, error) {
	art, err := s.Repo.Get(ctx, userID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if art.Status == entity.StatusFailed && art.ErrorMessage == "" {
		if h, err := s.History.LastFailure(ctx, art.ID); err == nil {
			art.ErrorMessage = h.Detail
		}
	}
	return art, nil
}

// List retrieves the user's articles with pagination metadata.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*PaginatedResult, error) {
	offset := pagination.CalculateOffset(params.Page, params.Limit)

	total, err := s.Repo.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	articles, err := s.Repo.List(ctx, userID, offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return &PaginatedResult{
		Data: articles,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: pagination.CalculateTotalPages(total, params.Limit),
		},
	}, nil
}

// Update modifies the article's request fields. Only non-nil fields in the
// input are updated.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	art, err := s.Repo.Get(ctx, in.UserID, in.ID)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrArticleNotFound
	}
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}

	if in.Keyword != nil {
		if strings.TrimSpace(*in.Keyword) == "" {
			return &entity.ValidationError{Field: "keyword", Message: "cannot be empty"}
		}
		art.Keyword = strings.TrimSpace(*in.Keyword)
	}
	if in.Target != nil {
		if strings.TrimSpace(*in.Target) == "" {
			return &entity.ValidationError{Field: "target", Message: "cannot be empty"}
		}
		art.Target = strings.TrimSpace(*in.Target)
	}
	if in.ArticleType != nil {
		if strings.TrimSpace(*in.ArticleType) == "" {
			return &entity.ValidationError{Field: "articleType", Message: "cannot be empty"}
		}
		art.ArticleType = strings.TrimSpace(*in.ArticleType)
	}
	if in.Title != nil {
		art.Title = *in.Title
	}
	if in.ImportantKeywords != nil {
		art.ImportantKeywords = trimKeywords(in.ImportantKeywords)
		if err := art.Validate(); err != nil {
			return err
		}
	}

	if err := s.Repo.Update(ctx, art); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("update article: %w", err)
	}
	s.record(ctx, art, entity.ActionUpdated, "article updated")
	return nil
}

// Delete removes the article. History rows are removed with it.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// History returns the article's audit trail, newest first.
func (s *Service) ArticleHistory(ctx context.Context, userID, id uuid.UUID) ([]*entity.ArticleHistory, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	entries, err := s.History.ListByArticle(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// StartAnalysis moves the article into keyword_analysis and enqueues the
// enrichment job. The transition is a conditional write: if a concurrent
// request already started an analysis, this one fails with
// ErrInvalidTransition and no duplicate job is enqueued.
func (s *Service) StartAnalysis(ctx context.Context, userID, id uuid.UUID) error {
	art, err := s.Repo.Get(ctx, userID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrArticleNotFound
	}
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}

	target := entity.StatusKeywordAnalysis
	err = s.Repo.UpdateStatusIf(ctx, id, target, entity.AllowedPredecessors(target))
	if errors.Is(err, entity.ErrConflict) {
		return ErrInvalidTransition
	}
	if err != nil {
		return fmt.Errorf("start analysis: %w", err)
	}

	art.Status = target
	s.record(ctx, art, entity.ActionAnalysisStarted, "keyword analysis started")

	if err := s.Jobs.Enqueue(JobKeywordAnalysis, id); err != nil {
		// The reconciler will pick the article up from its in-flight
		// status if the queue rejected the job.
		s.Log.Error("failed to enqueue analysis job",
			slog.String("article_id", id.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// SelectKeywords stores the user's keyword subset and enqueues generation.
// Every selected keyword must be part of the analyzed candidate set.
func (s *Service) SelectKeywords(ctx context.Context, userID, id uuid.UUID, keywords []string) error {
	if len(keywords) == 0 {
		return ErrNoKeywordsSelected
	}

	art, err := s.Repo.Get(ctx, userID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrArticleNotFound
	}
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}

	analyzed := make(map[string]struct{}, len(art.AnalyzedKeywords))
	for _, c := range art.AnalyzedKeywords {
		analyzed[strings.ToLower(c.Keyword)] = struct{}{}
	}
	for _, kw := range keywords {
		if _, ok := analyzed[strings.ToLower(strings.TrimSpace(kw))]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKeyword, kw)
		}
	}

	err = s.Repo.SaveSelection(ctx, userID, id, keywords)
	if errors.Is(err, entity.ErrConflict) {
		return ErrInvalidTransition
	}
	if err != nil {
		return fmt.Errorf("save selection: %w", err)
	}

	art.Status = entity.StatusProcessing
	s.record(ctx, art, entity.ActionKeywordsSelected,
		fmt.Sprintf("%d keywords selected", len(keywords)))

	if err := s.Jobs.Enqueue(JobGeneration, id); err != nil {
		s.Log.Error("failed to enqueue generation job",
			slog.String("article_id", id.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// Publish pushes a completed article to the named CMS. A publish failure
// leaves the article's status untouched; a second attempt on an already
// published article is allowed and re-publishes.
func (s *Service) Publish(ctx context.Context, userID, id uuid.UUID, cms string) (string, error) {
	pub, ok := s.Publishers[cms]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPublisher, cms)
	}

	art, err := s.Repo.Get(ctx, userID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return "", ErrArticleNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get article: %w", err)
	}
	if !entity.CanTransition(art.Status, entity.StatusPublished) {
		return "", ErrInvalidTransition
	}
	if art.Content == "" {
		return "", ErrNotReadyToPublish
	}

	externalID, err := pub.Publish(ctx, art)
	if err != nil {
		metrics.RecordPublish(cms, false)
		return "", fmt.Errorf("publish to %s: %w", cms, err)
	}
	metrics.RecordPublish(cms, true)

	err = s.Repo.MarkPublished(ctx, id, externalID)
	if errors.Is(err, entity.ErrConflict) {
		return externalID, ErrInvalidTransition
	}
	if err != nil {
		return externalID, fmt.Errorf("mark published: %w", err)
	}

	art.Status = entity.StatusPublished
	s.record(ctx, art, entity.ActionPublished,
		fmt.Sprintf("published to %s as %s", cms, externalID))
	return externalID, nil
}

// RunAnalysis executes the keyword enrichment for an article already in
// keyword_analysis. The background runner calls it; completion is a guarded
// write, so a duplicate run (e.g. the reconciler re-enqueued a slow job)
// cannot apply its result twice.
func (s *Service) RunAnalysis(ctx context.Context, id uuid.UUID) (err error) {
	art, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrArticleNotFound
	}
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}
	if art.Status != entity.StatusKeywordAnalysis {
		// Stale job: the article has already moved on.
		return nil
	}
	defer s.recoverRun(ctx, art, entity.ActionAnalysisFailed, &err)

	candidates, err := s.Enricher.Run(ctx, keyword.Request{
		UserID:    art.UserID,
		Seed:      art.Keyword,
		Target:    art.Target,
		Important: art.ImportantKeywords,
		Secondary: art.SelectedKeywords,
	})
	if err != nil {
		s.fail(ctx, art, entity.ActionAnalysisFailed, err)
		return fmt.Errorf("run analysis: %w", err)
	}

	err = s.Repo.SaveAnalysis(ctx, id, candidates)
	if errors.Is(err, entity.ErrConflict) {
		s.Log.Warn("analysis result discarded, article moved on",
			slog.String("article_id", id.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	art.Status = entity.StatusKeywordSelection
	s.record(ctx, art, entity.ActionAnalysisDone,
		fmt.Sprintf("%d keyword candidates scored", len(candidates)))
	return nil
}

// RunGeneration executes the content generation for an article already in
// processing. Completion is guarded the same way as RunAnalysis.
func (s *Service) RunGeneration(ctx context.Context, id uuid.UUID) (err error) {
	art, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrArticleNotFound
	}
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}
	if art.Status != entity.StatusProcessing {
		return nil
	}
	defer s.recoverRun(ctx, art, entity.ActionGenerationFailed, &err)

	start := time.Now()
	gen, err := s.Generator.Generate(ctx, art)
	metrics.RecordGenerationRun(err == nil, time.Since(start))
	if err != nil {
		s.fail(ctx, art, entity.ActionGenerationFailed, err)
		return fmt.Errorf("run generation: %w", err)
	}

	art.Title = gen.Title
	art.Content = gen.Content
	art.MetaTitle = gen.MetaTitle
	art.MetaDescription = gen.MetaDescription
	art.Subtopics = gen.Subtopics
	art.SerpStructure = gen.Serp

	err = s.Repo.SaveGenerated(ctx, art)
	if errors.Is(err, entity.ErrConflict) {
		s.Log.Warn("generation result discarded, article moved on",
			slog.String("article_id", id.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("save generated: %w", err)
	}

	art.Status = entity.StatusCompleted
	s.record(ctx, art, entity.ActionGenerationDone, "article content generated")
	return nil
}

// recoverRun converts a panic inside a background run into a recorded
// failure. Without it the article would stay in its in-flight status and
// the reconciler would re-enqueue the same crashing job forever.
func (s *Service) recoverRun(ctx context.Context, art *entity.Article, action string, err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	s.Log.Error("background run panicked",
		slog.String("article_id", art.ID.String()),
		slog.String("action", action),
		slog.String("panic", fmt.Sprint(rec)),
		slog.String("stack", string(debug.Stack())))
	cause := fmt.Errorf("panic: %v", rec)
	s.fail(ctx, art, action, cause)
	*err = cause
}

// fail marks the article failed and records the truncated cause in the
// history, so the failure survives later status changes.
func (s *Service) fail(ctx context.Context, art *entity.Article, action string, cause error) {
	msg := truncateError(cause)
	if err := s.Repo.MarkFailed(ctx, art.ID, msg); err != nil {
		s.Log.Error("failed to mark article failed",
			slog.String("article_id", art.ID.String()),
			slog.String("error", err.Error()))
	}
	art.Status = entity.StatusFailed
	s.record(ctx, art, action, msg)
}

// record appends a history entry. History is best-effort: a failed append
// is logged but never fails the operation that triggered it.
func (s *Service) record(ctx context.Context, art *entity.Article, action, detail string) {
	h := &entity.ArticleHistory{
		ID:        uuid.New(),
		ArticleID: art.ID,
		UserID:    art.UserID,
		Action:    action,
		Status:    art.Status,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.History.Append(ctx, h); err != nil {
		s.Log.Error("failed to append article history",
			slog.String("article_id", art.ID.String()),
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

// trimKeywords drops blanks and surrounding whitespace.
func trimKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func truncateError(err error) string {
	msg := []rune(err.Error())
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}
	return string(msg)
}
