package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
	"seoforge/internal/repository"
)

type SettingRepo struct {
	db *sql.DB
}

func NewSettingRepo(db *sql.DB) repository.SettingRepository {
	return &SettingRepo{db: db}
}

func (repo *SettingRepo) Upsert(ctx context.Context, s *entity.Setting) error {
	const query = `
INSERT INTO settings
       (id, user_id, key, value, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (user_id, key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := repo.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Key, s.Value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *SettingRepo) Get(ctx context.Context, userID uuid.UUID, key string) (*entity.Setting, error) {
	const query = `
SELECT id, user_id, key, value, created_at, updated_at
FROM settings
WHERE user_id = $1 AND key = $2
LIMIT 1`
	var s entity.Setting
	err := repo.db.QueryRowContext(ctx, query, userID, key).
		Scan(&s.ID, &s.UserID, &s.Key, &s.Value, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &s, nil
}

func (repo *SettingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Setting, error) {
	const query = `
SELECT id, user_id, key, value, created_at, updated_at
FROM settings
WHERE user_id = $1
ORDER BY key ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make([]*entity.Setting, 0, 16)
	for rows.Next() {
		var s entity.Setting
		if err := rows.Scan(&s.ID, &s.UserID, &s.Key, &s.Value,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListByUser: Scan: %w", err)
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

func (repo *SettingRepo) Delete(ctx context.Context, userID uuid.UUID, key string) error {
	const query = `DELETE FROM settings WHERE user_id = $1 AND key = $2`
	res, err := repo.db.ExecContext(ctx, query, userID, key)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
