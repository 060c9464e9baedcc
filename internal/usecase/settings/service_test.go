package settings_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/domain/entity"
	"seoforge/internal/infra/secrets"
	"seoforge/internal/usecase/settings"
)

type stubSettingRepo struct {
	mu     sync.Mutex
	stored map[string]*entity.Setting // userID|key
}

func newStubSettingRepo() *stubSettingRepo {
	return &stubSettingRepo{stored: make(map[string]*entity.Setting)}
}

func (r *stubSettingRepo) key(userID uuid.UUID, key string) string {
	return userID.String() + "|" + key
}

func (r *stubSettingRepo) Upsert(_ context.Context, s *entity.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.stored[r.key(s.UserID, s.Key)] = &cp
	return nil
}

func (r *stubSettingRepo) Get(_ context.Context, userID uuid.UUID, key string) (*entity.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stored[r.key(userID, key)]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSettingRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Setting{}
	for _, s := range r.stored {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubSettingRepo) Delete(_ context.Context, userID uuid.UUID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(userID, key)
	if _, ok := r.stored[k]; !ok {
		return entity.ErrNotFound
	}
	delete(r.stored, k)
	return nil
}

func newService(t *testing.T) (*settings.Service, *stubSettingRepo) {
	t.Helper()
	vault, err := secrets.New("unit-test-encryption-secret")
	require.NoError(t, err)
	repo := newStubSettingRepo()
	return &settings.Service{Repo: repo, Vault: vault}, repo
}

func TestService_Upsert_EncryptsSensitiveKeys(t *testing.T) {
	svc, repo := newService(t)
	userID := uuid.New()

	err := svc.Upsert(context.Background(), userID, entity.SettingOpenAIAPIKey, "sk-secret")
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), userID, entity.SettingOpenAIAPIKey)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Value, secrets.Prefix))
	assert.NotContains(t, stored.Value, "sk-secret")
}

func TestService_Upsert_PlaintextForNonSensitiveKeys(t *testing.T) {
	svc, repo := newService(t)
	userID := uuid.New()

	err := svc.Upsert(context.Background(), userID, entity.SettingShopifyDomain, "shop.example.com")
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), userID, entity.SettingShopifyDomain)
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", stored.Value)
}

func TestService_Upsert_ReplacesExistingValue(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingWordPressURL, "https://old.example"))
	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingWordPressURL, "https://new.example"))

	got, err := svc.Get(ctx, userID, entity.SettingWordPressURL)
	require.NoError(t, err)
	assert.Equal(t, "https://new.example", got.Value)
}

func TestService_Upsert_Validation(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Upsert(context.Background(), uuid.New(), "   ", "v")
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_Get_MasksSensitiveValue(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()
	ctx := context.Background()
	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingDataForSEOPassword, "hunter2"))

	got, err := svc.Get(ctx, userID, entity.SettingDataForSEOPassword)
	require.NoError(t, err)
	assert.Equal(t, entity.MaskedValue, got.Value)
	assert.True(t, got.IsMasked)
	assert.NotEqual(t, "hunter2", got.Value)
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), uuid.New(), entity.SettingOpenAIAPIKey)
	assert.ErrorIs(t, err, settings.ErrSettingNotFound)
}

func TestService_List_MasksOnlySensitive(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()
	ctx := context.Background()
	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingShopifyToken, "shpat_abc"))
	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingShopifyDomain, "shop.example.com"))

	views, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byKey := map[string]*settings.View{}
	for _, v := range views {
		byKey[v.Key] = v
	}
	assert.Equal(t, entity.MaskedValue, byKey[entity.SettingShopifyToken].Value)
	assert.True(t, byKey[entity.SettingShopifyToken].IsMasked)
	assert.Equal(t, "shop.example.com", byKey[entity.SettingShopifyDomain].Value)
	assert.False(t, byKey[entity.SettingShopifyDomain].IsMasked)
}

func TestService_Resolve_DecryptsForServerSideUse(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()
	ctx := context.Background()
	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingDataForSEOLogin, "login@example.com"))
	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingDataForSEOPassword, "hunter2"))

	creds, err := svc.Resolve(ctx, userID,
		entity.SettingDataForSEOLogin, entity.SettingDataForSEOPassword)
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", creds[entity.SettingDataForSEOLogin])
	assert.Equal(t, "hunter2", creds[entity.SettingDataForSEOPassword])
}

func TestService_Resolve_MissingCredential(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Resolve(context.Background(), uuid.New(), entity.SettingOpenAIAPIKey)
	assert.ErrorIs(t, err, settings.ErrCredentialMissing)
	assert.Contains(t, err.Error(), entity.SettingOpenAIAPIKey)
}

func TestService_Resolve_LegacyPlaintextPassesThrough(t *testing.T) {
	svc, repo := newService(t)
	userID := uuid.New()
	ctx := context.Background()

	// A value written before encryption was introduced.
	require.NoError(t, repo.Upsert(ctx, &entity.Setting{
		ID: uuid.New(), UserID: userID,
		Key: entity.SettingOpenAIAPIKey, Value: "sk-legacy",
	}))

	creds, err := svc.Resolve(ctx, userID, entity.SettingOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-legacy", creds[entity.SettingOpenAIAPIKey])
}

func TestService_Delete(t *testing.T) {
	svc, _ := newService(t)
	userID := uuid.New()
	ctx := context.Background()
	require.NoError(t, svc.Upsert(ctx, userID, entity.SettingWordPressUser, "admin"))

	require.NoError(t, svc.Delete(ctx, userID, entity.SettingWordPressUser))
	assert.ErrorIs(t, svc.Delete(ctx, userID, entity.SettingWordPressUser), settings.ErrSettingNotFound)
}
