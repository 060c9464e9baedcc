package article_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/common/pagination"
	"seoforge/internal/domain/entity"
	"seoforge/internal/handler/http/article"
	"seoforge/internal/handler/http/auth"
	artUC "seoforge/internal/usecase/article"
)

var testUserID = uuid.MustParse("7a3e9f10-1b2c-4d5e-8f90-a1b2c3d4e5f6")

/* ─── stubs ─── */

type stubRepo struct {
	mu       sync.Mutex
	articles map[uuid.UUID]*entity.Article
}

func newStubRepo() *stubRepo {
	return &stubRepo{articles: make(map[uuid.UUID]*entity.Article)}
}

func (s *stubRepo) Create(_ context.Context, a *entity.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.articles[a.ID] = &cp
	return nil
}

func (s *stubRepo) Get(_ context.Context, userID, id uuid.UUID) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok || a.UserID != userID {
		return nil, entity.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubRepo) List(_ context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Article
	for _, a := range s.articles {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) Count(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, a := range s.articles {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) Update(_ context.Context, a *entity.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[a.ID]; !ok {
		return entity.ErrNotFound
	}
	cp := *a
	s.articles[a.ID] = &cp
	return nil
}

func (s *stubRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok || a.UserID != userID {
		return entity.ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

func (s *stubRepo) guarded(id uuid.UUID, to entity.ArticleStatus, apply func(a *entity.Article)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return entity.ErrNotFound
	}
	if !entity.CanTransition(a.Status, to) {
		return entity.ErrConflict
	}
	a.Status = to
	apply(a)
	return nil
}

func (s *stubRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, status entity.ArticleStatus, _ []entity.ArticleStatus) error {
	return s.guarded(id, status, func(*entity.Article) {})
}

func (s *stubRepo) SaveAnalysis(_ context.Context, id uuid.UUID, candidates []entity.KeywordCandidate) error {
	return s.guarded(id, entity.StatusKeywordSelection, func(a *entity.Article) {
		a.AnalyzedKeywords = candidates
		a.ErrorMessage = ""
	})
}

func (s *stubRepo) SaveSelection(_ context.Context, userID, id uuid.UUID, keywords []string) error {
	s.mu.Lock()
	a, ok := s.articles[id]
	s.mu.Unlock()
	if !ok || a.UserID != userID {
		return entity.ErrNotFound
	}
	return s.guarded(id, entity.StatusProcessing, func(a *entity.Article) {
		a.SelectedKeywords = keywords
	})
}

func (s *stubRepo) SaveGenerated(_ context.Context, art *entity.Article) error {
	return s.guarded(art.ID, entity.StatusCompleted, func(a *entity.Article) {
		a.Title = art.Title
		a.Content = art.Content
	})
}

func (s *stubRepo) MarkPublished(_ context.Context, id uuid.UUID, externalID string) error {
	return s.guarded(id, entity.StatusPublished, func(a *entity.Article) {
		a.ExternalArticleID = externalID
	})
}

func (s *stubRepo) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	return s.guarded(id, entity.StatusFailed, func(a *entity.Article) {
		a.ErrorMessage = errMsg
	})
}

func (s *stubRepo) ListStale(_ context.Context, _ int) ([]*entity.Article, error) {
	return nil, nil
}

type stubHistory struct {
	mu      sync.Mutex
	entries []*entity.ArticleHistory
}

func (s *stubHistory) Append(_ context.Context, h *entity.ArticleHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, h)
	return nil
}

func (s *stubHistory) ListByArticle(_ context.Context, _, articleID uuid.UUID) ([]*entity.ArticleHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.ArticleHistory
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ArticleID == articleID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *stubHistory) LastFailure(_ context.Context, _ uuid.UUID) (*entity.ArticleHistory, error) {
	return nil, entity.ErrNotFound
}

type stubQueue struct {
	mu   sync.Mutex
	jobs []string
}

func (s *stubQueue) Enqueue(kind string, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, kind)
	return nil
}

type stubPublisher struct {
	externalID string
	err        error
}

func (s *stubPublisher) Publish(_ context.Context, _ *entity.Article) (string, error) {
	return s.externalID, s.err
}

/* ─── fixture ─── */

type fixture struct {
	repo    *stubRepo
	history *stubHistory
	queue   *stubQueue
	pub     *stubPublisher
	svc     *artUC.Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newStubRepo(),
		history: &stubHistory{},
		queue:   &stubQueue{},
		pub:     &stubPublisher{externalID: "ext-42"},
	}
	f.svc = &artUC.Service{
		Repo:       f.repo,
		History:    f.history,
		Jobs:       f.queue,
		Publishers: map[string]artUC.Publisher{"shopify": f.pub},
		Log:        slog.Default(),
	}
	return f
}

func (f *fixture) seed(t *testing.T, status entity.ArticleStatus) *entity.Article {
	t.Helper()
	art := &entity.Article{
		ID:          uuid.New(),
		UserID:      testUserID,
		Keyword:     "home espresso",
		Target:      "beginners",
		ArticleType: "guide",
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if status == entity.StatusKeywordSelection {
		art.AnalyzedKeywords = []entity.KeywordCandidate{{Keyword: "espresso grinder"}}
	}
	if status == entity.StatusCompleted {
		art.Title = "The Home Espresso Guide"
		art.Content = "## Getting started\n..."
	}
	require.NoError(t, f.repo.Create(context.Background(), art))
	return art
}

// asUser attaches the authenticated user, as the auth middleware would.
func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

// do routes the request through a mux so {id} path values resolve.
func do(f *fixture, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle("POST /articles", article.CreateHandler{Svc: f.svc})
	mux.Handle("GET /articles/{id}", article.GetHandler{Svc: f.svc})
	mux.Handle("GET /articles", article.ListHandler{Svc: f.svc, PaginationCfg: pagination.DefaultConfig(), Logger: slog.Default()})
	mux.Handle("PUT /articles/{id}", article.UpdateHandler{Svc: f.svc})
	mux.Handle("DELETE /articles/{id}", article.DeleteHandler{Svc: f.svc})
	mux.Handle("GET /articles/{id}/history", article.HistoryHandler{Svc: f.svc})
	mux.Handle("POST /articles/{id}/start-keyword-analysis", article.StartAnalysisHandler{Svc: f.svc})
	mux.Handle("POST /articles/{id}/select-keywords", article.SelectKeywordsHandler{Svc: f.svc})
	mux.Handle("POST /articles/{id}/publish", article.PublishHandler{Svc: f.svc})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

/* ─── create / get / list / update / delete ─── */

func TestCreateHandler(t *testing.T) {
	f := newFixture()

	body := `{"keyword":"home espresso","target":"beginners","article_type":"guide"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(body)), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var dto article.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "home espresso", dto.Keyword)
	assert.Equal(t, "draft", dto.Status)
	assert.NotEmpty(t, dto.ID)
}

func TestCreateHandler_ValidationError(t *testing.T) {
	f := newFixture()

	body := `{"keyword":"","target":"beginners","article_type":"guide"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(body)), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "keyword")
}

func TestCreateHandler_MalformedJSON(t *testing.T) {
	f := newFixture()

	req := asUser(httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader("{not json")), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHandler(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusDraft)

	req := asUser(httptest.NewRequest(http.MethodGet, "/articles/"+art.ID.String(), nil), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var dto article.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, art.ID.String(), dto.ID)
}

func TestGetHandler_InvalidID(t *testing.T) {
	f := newFixture()

	req := asUser(httptest.NewRequest(http.MethodGet, "/articles/not-a-uuid", nil), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHandler_NotFound(t *testing.T) {
	f := newFixture()

	req := asUser(httptest.NewRequest(http.MethodGet, "/articles/"+uuid.NewString(), nil), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHandler_OtherUsersArticleHidden(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusDraft)

	req := asUser(httptest.NewRequest(http.MethodGet, "/articles/"+art.ID.String(), nil), uuid.New())

	rec := do(f, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListHandler(t *testing.T) {
	f := newFixture()
	f.seed(t, entity.StatusDraft)
	f.seed(t, entity.StatusDraft)

	req := asUser(httptest.NewRequest(http.MethodGet, "/articles?page=1&limit=20", nil), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp pagination.Response[article.DTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
}

func TestListHandler_InvalidPage(t *testing.T) {
	f := newFixture()

	req := asUser(httptest.NewRequest(http.MethodGet, "/articles?page=0", nil), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateHandler(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusDraft)

	body := `{"target":"experts"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/articles/"+art.ID.String(), strings.NewReader(body)), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	got, err := f.repo.Get(context.Background(), testUserID, art.ID)
	require.NoError(t, err)
	assert.Equal(t, "experts", got.Target)
	assert.Equal(t, "home espresso", got.Keyword)
}

func TestDeleteHandler(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusDraft)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/articles/"+art.ID.String(), nil), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err := f.repo.Get(context.Background(), testUserID, art.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

/* ─── lifecycle operations ─── */

func TestStartAnalysisHandler(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusDraft)

	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/start-keyword-analysis", nil), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var dto article.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "keyword_analysis", dto.Status)
	assert.Equal(t, []string{artUC.JobKeywordAnalysis}, f.queue.jobs)
}

func TestStartAnalysisHandler_InvalidTransition(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusKeywordAnalysis)

	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/start-keyword-analysis", nil), testUserID)

	rec := do(f, req)

	// A transition the lifecycle does not allow is a 400, not a 409.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.queue.jobs)
}

func TestSelectKeywordsHandler(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusKeywordSelection)

	body := `{"keywords":["espresso grinder"]}`
	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/select-keywords", strings.NewReader(body)), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var dto article.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "processing", dto.Status)
	assert.Equal(t, []string{artUC.JobGeneration}, f.queue.jobs)
}

func TestSelectKeywordsHandler_UnknownKeyword(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusKeywordSelection)

	body := `{"keywords":["never analyzed"]}`
	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/select-keywords", strings.NewReader(body)), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectKeywordsHandler_EmptySelection(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusKeywordSelection)

	body := `{"keywords":[]}`
	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/select-keywords", strings.NewReader(body)), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishHandler(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusCompleted)

	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/publish", strings.NewReader(`{"target":"shopify"}`)), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ext-42", resp["external_article_id"])
	assert.Equal(t, "shopify", resp["target"])
}

func TestPublishHandler_EmptyBodyDefaultsToShopify(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusCompleted)

	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/publish", nil), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shopify")
}

func TestPublishHandler_UnknownTarget(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusCompleted)

	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/publish", strings.NewReader(`{"target":"medium"}`)), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishHandler_NotCompleted(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusDraft)

	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/publish", nil), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishHandler_CMSFailure(t *testing.T) {
	f := newFixture()
	f.pub.err = assert.AnError
	art := f.seed(t, entity.StatusCompleted)

	req := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/publish", nil), testUserID)

	rec := do(f, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHistoryHandler(t *testing.T) {
	f := newFixture()
	art := f.seed(t, entity.StatusDraft)

	// Walk one lifecycle step so history has entries.
	startReq := asUser(httptest.NewRequest(http.MethodPost,
		"/articles/"+art.ID.String()+"/start-keyword-analysis", nil), testUserID)
	require.Equal(t, http.StatusAccepted, do(f, startReq).Code)

	req := asUser(httptest.NewRequest(http.MethodGet,
		"/articles/"+art.ID.String()+"/history", nil), testUserID)

	rec := do(f, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []article.HistoryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, entity.ActionAnalysisStarted, entries[0].Action)
}
