package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/domain/entity"
	"seoforge/internal/infra/secrets"
	"seoforge/internal/repository"
)

// View is the client-facing shape of a setting. Sensitive values are
// replaced with a fixed placeholder; the plaintext never leaves the server.
type View struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	IsMasked  bool      `json:"is_masked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service implements the settings operations on top of the repository and
// the encryption vault.
type Service struct {
	Repo  repository.SettingRepository
	Vault *secrets.Vault
}

// Upsert stores the value under (userID, key), replacing any previous
// value. Sensitive keys are encrypted before they reach the repository.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, key, value string) error {
	key = strings.TrimSpace(key)
	setting := &entity.Setting{
		ID:     uuid.New(),
		UserID: userID,
		Key:    key,
		Value:  value,
	}
	if err := setting.Validate(); err != nil {
		return err
	}

	if entity.SensitiveSetting(key) {
		enc, err := s.Vault.Encrypt(value)
		if err != nil {
			return fmt.Errorf("encrypt setting %s: %w", key, err)
		}
		setting.Value = enc
	}

	if err := s.Repo.Upsert(ctx, setting); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// Get returns the masked view of one setting.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, key string) (*View, error) {
	setting, err := s.Repo.Get(ctx, userID, key)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return s.view(setting), nil
}

// List returns the masked views of all of the user's settings.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*View, error) {
	stored, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	views := make([]*View, 0, len(stored))
	for _, setting := range stored {
		views = append(views, s.view(setting))
	}
	return views, nil
}

// Delete removes the setting for (userID, key).
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, key string) error {
	err := s.Repo.Delete(ctx, userID, key)
	if errors.Is(err, entity.ErrNotFound) {
		return ErrSettingNotFound
	}
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}

// Resolve decrypts credentials for server-side collaborators. Every
// requested key must be present; a missing one yields ErrCredentialMissing
// so the caller can report which credential the user still has to set.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		setting, err := s.Repo.Get(ctx, userID, key)
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialMissing, key)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", key, err)
		}
		value, err := s.Vault.Decrypt(setting.Value)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

func (s *Service) view(setting *entity.Setting) *View {
	v := &View{
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedAt: setting.UpdatedAt,
	}
	if entity.SensitiveSetting(setting.Key) {
		v.Value = entity.MaskedValue
		v.IsMasked = true
	}
	return v
}
