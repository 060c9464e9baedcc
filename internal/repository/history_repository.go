package repository

import (
	"context"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
)

// HistoryRepository persists the append-only audit trail of article mutations.
type HistoryRepository interface {
	Append(ctx context.Context, h *entity.ArticleHistory) error
	// ListByArticle returns the article's history newest first.
	ListByArticle(ctx context.Context, userID, articleID uuid.UUID) ([]*entity.ArticleHistory, error)
	// LastFailure returns the most recent failure entry for the article,
	// or entity.ErrNotFound when the article never failed. Used to
	// reconstruct the failure cause after the status has moved on.
	LastFailure(ctx context.Context, articleID uuid.UUID) (*entity.ArticleHistory, error)
}
