package repository

import (
	"context"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
)

// ArticleRepository persists articles. All read and write operations are
// scoped by owner: an article is only visible to the user that created it.
type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	// Get retrieves an article owned by userID. Returns entity.ErrNotFound
	// when no such article exists or it belongs to another user.
	Get(ctx context.Context, userID, id uuid.UUID) (*entity.Article, error)
	// GetByID retrieves an article without owner scoping. Background
	// workers use it; HTTP-facing code must use Get.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Article, error)
	// List retrieves the user's articles ordered by created_at DESC.
	// Uses LIMIT and OFFSET for pagination.
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Article, error)
	// Count returns the total number of articles owned by userID.
	// This is used for calculating pagination metadata (total pages, etc.).
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// UpdateStatusIf moves the article to status only when its current
	// status is one of from, as a single conditional write. Returns
	// entity.ErrConflict when the article is in none of the from states,
	// so concurrent transitions cannot both win.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, status entity.ArticleStatus, from []entity.ArticleStatus) error

	// SaveAnalysis stores the enrichment result and moves the article to
	// keyword_selection in one write, guarded the same way as UpdateStatusIf.
	SaveAnalysis(ctx context.Context, id uuid.UUID, candidates []entity.KeywordCandidate) error

	// SaveSelection stores the user's keyword subset and moves the article
	// from keyword_selection to processing in one guarded write.
	SaveSelection(ctx context.Context, userID, id uuid.UUID, keywords []string) error

	// SaveGenerated stores the generated content, metadata and SERP
	// structure and moves the article to completed in one guarded write.
	SaveGenerated(ctx context.Context, article *entity.Article) error

	// MarkPublished moves the article to published and records the
	// identifier assigned by the CMS, as one guarded write.
	MarkPublished(ctx context.Context, id uuid.UUID, externalID string) error

	// MarkFailed moves an in-flight article to failed and records the
	// truncated error message.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// ListStale returns articles that have sat in an in-flight status for
	// longer than the given number of seconds. The reconciler uses this to
	// recover jobs lost to a crash.
	ListStale(ctx context.Context, olderThanSeconds int) ([]*entity.Article, error)
}
