package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
	"seoforge/internal/repository"
)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepo{db: db}
}

func (repo *HistoryRepo) Append(ctx context.Context, h *entity.ArticleHistory) error {
	const query = `
INSERT INTO article_history
       (id, article_id, user_id, action, status, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		h.ID, h.ArticleID, h.UserID, h.Action, h.Status, h.Detail, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

func (repo *HistoryRepo) ListByArticle(ctx context.Context, userID, articleID uuid.UUID) ([]*entity.ArticleHistory, error) {
	const query = `
SELECT id, article_id, user_id, action, status, detail, created_at
FROM article_history
WHERE article_id = $1 AND user_id = $2
ORDER BY created_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, articleID, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByArticle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.ArticleHistory, 0, 32)
	for rows.Next() {
		var h entity.ArticleHistory
		if err := rows.Scan(&h.ID, &h.ArticleID, &h.UserID,
			&h.Action, &h.Status, &h.Detail, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByArticle: Scan: %w", err)
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}

func (repo *HistoryRepo) LastFailure(ctx context.Context, articleID uuid.UUID) (*entity.ArticleHistory, error) {
	const query = `
SELECT id, article_id, user_id, action, status, detail, created_at
FROM article_history
WHERE article_id = $1 AND action = ANY($2::text[])
ORDER BY created_at DESC
LIMIT 1`
	failures := "{" + entity.ActionAnalysisFailed + "," + entity.ActionGenerationFailed + "}"
	var h entity.ArticleHistory
	err := repo.db.QueryRowContext(ctx, query, articleID, failures).
		Scan(&h.ID, &h.ArticleID, &h.UserID, &h.Action, &h.Status, &h.Detail, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("LastFailure: %w", err)
	}
	return &h, nil
}
