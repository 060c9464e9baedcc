package repository

import (
	"context"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
)

// SettingRepository persists user settings. Values are stored exactly as
// given; encryption of sensitive values happens above this layer.
type SettingRepository interface {
	// Upsert inserts the setting or replaces the value of an existing
	// (user, key) pair.
	Upsert(ctx context.Context, s *entity.Setting) error
	// Get returns the setting for (userID, key), or entity.ErrNotFound.
	Get(ctx context.Context, userID uuid.UUID, key string) (*entity.Setting, error)
	// ListByUser returns all of the user's settings ordered by key.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Setting, error)
	Delete(ctx context.Context, userID uuid.UUID, key string) error
}
