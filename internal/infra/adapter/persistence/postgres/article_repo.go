package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
	"seoforge/internal/repository"
)

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

const articleColumns = `id, user_id, keyword, target, article_type, important_keywords, status,
       title, content, error_message,
       analyzed_keywords, selected_keywords,
       meta_title, meta_description, subtopics, serp_structure,
       external_article_id, created_at, updated_at`

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	important, err := json.Marshal(article.ImportantKeywords)
	if err != nil {
		return fmt.Errorf("Create: Marshal: %w", err)
	}
	const query = `
INSERT INTO articles
       (id, user_id, keyword, target, article_type, important_keywords, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = repo.db.ExecContext(ctx, query,
		article.ID, article.UserID, article.Keyword, article.Target,
		article.ArticleType, important, article.Status, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1 AND user_id = $2
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE user_id = $1`
	var count int64
	err := repo.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	important, err := json.Marshal(article.ImportantKeywords)
	if err != nil {
		return fmt.Errorf("Update: Marshal: %w", err)
	}
	const query = `
UPDATE articles SET
       keyword            = $1,
       target             = $2,
       article_type       = $3,
       important_keywords = $4,
       title              = $5,
       updated_at         = $6
WHERE id = $7 AND user_id = $8`
	res, err := repo.db.ExecContext(ctx, query,
		article.Keyword, article.Target, article.ArticleType, important,
		article.Title, time.Now().UTC(), article.ID, article.UserID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const query = `DELETE FROM articles WHERE id = $1 AND user_id = $2`
	res, err := repo.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// UpdateStatusIf performs the transition as a single conditional UPDATE so
// that two concurrent callers cannot both observe the old status and win.
func (repo *ArticleRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, status entity.ArticleStatus, from []entity.ArticleStatus) error {
	const query = `
UPDATE articles SET
       status     = $1,
       updated_at = $2
WHERE id = $3 AND status = ANY($4::text[])`
	res, err := repo.db.ExecContext(ctx, query, status, time.Now().UTC(), id, statusStrings(from))
	if err != nil {
		return fmt.Errorf("UpdateStatusIf: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrConflict
	}
	return nil
}

func (repo *ArticleRepo) SaveAnalysis(ctx context.Context, id uuid.UUID, candidates []entity.KeywordCandidate) error {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("SaveAnalysis: Marshal: %w", err)
	}
	const query = `
UPDATE articles SET
       status            = $1,
       analyzed_keywords = $2,
       error_message     = '',
       updated_at        = $3
WHERE id = $4 AND status = ANY($5::text[])`
	res, err := repo.db.ExecContext(ctx, query,
		entity.StatusKeywordSelection, payload, time.Now().UTC(),
		id, statusStrings(entity.AllowedPredecessors(entity.StatusKeywordSelection)),
	)
	if err != nil {
		return fmt.Errorf("SaveAnalysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrConflict
	}
	return nil
}

func (repo *ArticleRepo) SaveSelection(ctx context.Context, userID, id uuid.UUID, keywords []string) error {
	payload, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("SaveSelection: Marshal: %w", err)
	}
	const query = `
UPDATE articles SET
       status            = $1,
       selected_keywords = $2,
       updated_at        = $3
WHERE id = $4 AND user_id = $5 AND status = ANY($6::text[])`
	res, err := repo.db.ExecContext(ctx, query,
		entity.StatusProcessing, payload, time.Now().UTC(),
		id, userID, statusStrings(entity.AllowedPredecessors(entity.StatusProcessing)),
	)
	if err != nil {
		return fmt.Errorf("SaveSelection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrConflict
	}
	return nil
}

func (repo *ArticleRepo) SaveGenerated(ctx context.Context, article *entity.Article) error {
	subtopics, err := json.Marshal(article.Subtopics)
	if err != nil {
		return fmt.Errorf("SaveGenerated: Marshal subtopics: %w", err)
	}
	var serp []byte
	if article.SerpStructure != nil {
		serp, err = json.Marshal(article.SerpStructure)
		if err != nil {
			return fmt.Errorf("SaveGenerated: Marshal serp: %w", err)
		}
	}
	const query = `
UPDATE articles SET
       status           = $1,
       title            = $2,
       content          = $3,
       meta_title       = $4,
       meta_description = $5,
       subtopics        = $6,
       serp_structure   = $7,
       error_message    = '',
       updated_at       = $8
WHERE id = $9 AND status = ANY($10::text[])`
	res, err := repo.db.ExecContext(ctx, query,
		entity.StatusCompleted, article.Title, article.Content,
		article.MetaTitle, article.MetaDescription, subtopics, serp,
		time.Now().UTC(), article.ID,
		statusStrings(entity.AllowedPredecessors(entity.StatusCompleted)),
	)
	if err != nil {
		return fmt.Errorf("SaveGenerated: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrConflict
	}
	return nil
}

func (repo *ArticleRepo) MarkPublished(ctx context.Context, id uuid.UUID, externalID string) error {
	const query = `
UPDATE articles SET
       status              = $1,
       external_article_id = $2,
       updated_at          = $3
WHERE id = $4 AND status = ANY($5::text[])`
	res, err := repo.db.ExecContext(ctx, query,
		entity.StatusPublished, externalID, time.Now().UTC(),
		id, statusStrings(entity.AllowedPredecessors(entity.StatusPublished)),
	)
	if err != nil {
		return fmt.Errorf("MarkPublished: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrConflict
	}
	return nil
}

func (repo *ArticleRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	const query = `
UPDATE articles SET
       status        = $1,
       error_message = $2,
       updated_at    = $3
WHERE id = $4 AND status = ANY($5::text[])`
	res, err := repo.db.ExecContext(ctx, query,
		entity.StatusFailed, errMsg, time.Now().UTC(),
		id, statusStrings(entity.AllowedPredecessors(entity.StatusFailed)),
	)
	if err != nil {
		return fmt.Errorf("MarkFailed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrConflict
	}
	return nil
}

func (repo *ArticleRepo) ListStale(ctx context.Context, olderThanSeconds int) ([]*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE status = ANY($1::text[])
  AND updated_at < NOW() - make_interval(secs => $2)
ORDER BY updated_at ASC`
	inFlight := statusStrings([]entity.ArticleStatus{entity.StatusKeywordAnalysis, entity.StatusProcessing})
	rows, err := repo.db.QueryContext(ctx, query, inFlight, olderThanSeconds)
	if err != nil {
		return nil, fmt.Errorf("ListStale: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 16)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStale: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		article   entity.Article
		important []byte
		analyzed  []byte
		selected  []byte
		subtopics []byte
		serp      []byte
	)
	err := row.Scan(
		&article.ID, &article.UserID, &article.Keyword, &article.Target,
		&article.ArticleType, &important, &article.Status,
		&article.Title, &article.Content, &article.ErrorMessage,
		&analyzed, &selected,
		&article.MetaTitle, &article.MetaDescription, &subtopics, &serp,
		&article.ExternalArticleID, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(important) > 0 {
		if err := json.Unmarshal(important, &article.ImportantKeywords); err != nil {
			return nil, fmt.Errorf("important_keywords: %w", err)
		}
	}
	if len(analyzed) > 0 {
		if err := json.Unmarshal(analyzed, &article.AnalyzedKeywords); err != nil {
			return nil, fmt.Errorf("analyzed_keywords: %w", err)
		}
	}
	if len(selected) > 0 {
		if err := json.Unmarshal(selected, &article.SelectedKeywords); err != nil {
			return nil, fmt.Errorf("selected_keywords: %w", err)
		}
	}
	if len(subtopics) > 0 {
		if err := json.Unmarshal(subtopics, &article.Subtopics); err != nil {
			return nil, fmt.Errorf("subtopics: %w", err)
		}
	}
	if len(serp) > 0 {
		article.SerpStructure = &entity.SerpStructure{}
		if err := json.Unmarshal(serp, article.SerpStructure); err != nil {
			return nil, fmt.Errorf("serp_structure: %w", err)
		}
	}
	return &article, nil
}

// statusStrings renders a status set as a Postgres array literal. Status
// names never contain commas or braces, so no quoting is needed. A literal
// plus a ::text[] cast keeps the queries driver-agnostic.
func statusStrings(ss []entity.ArticleStatus) string {
	out := "{"
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += string(s)
	}
	return out + "}"
}
