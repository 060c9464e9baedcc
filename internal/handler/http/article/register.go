package article

import (
	"log/slog"
	"net/http"

	"seoforge/internal/common/pagination"
	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/middleware"
	artUC "seoforge/internal/usecase/article"
	"seoforge/pkg/config"
)

// Register registers all article-related HTTP handlers with the given mux.
// Every route requires authentication and carries a per-endpoint rate
// limit; the three read routes share one policy. The limiter sits inside
// the auth middleware so limits key on the authenticated user.
func Register(mux *http.ServeMux, svc *artUC.Service, paginationCfg pagination.Config, rl *middleware.RateLimit, logger *slog.Logger) {
	limited := func(endpoint string, h http.Handler) http.Handler {
		return auth.Authz(rl.Endpoint(endpoint)(h))
	}

	mux.Handle("GET    /articles", limited(config.EndpointArticleRead, ListHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	}))
	mux.Handle("GET    /articles/{id}", limited(config.EndpointArticleRead, GetHandler{svc}))
	mux.Handle("GET    /articles/{id}/history", limited(config.EndpointArticleRead, HistoryHandler{svc}))

	mux.Handle("POST   /articles", limited(config.EndpointArticleCreate, CreateHandler{svc}))
	mux.Handle("PUT    /articles/{id}", limited(config.EndpointArticleUpdate, UpdateHandler{svc}))
	mux.Handle("DELETE /articles/{id}", limited(config.EndpointArticleDelete, DeleteHandler{svc}))

	mux.Handle("POST   /articles/{id}/start-keyword-analysis",
		limited(config.EndpointStartAnalysis, StartAnalysisHandler{svc}))
	mux.Handle("POST   /articles/{id}/select-keywords",
		limited(config.EndpointSelectKeywords, SelectKeywordsHandler{svc}))
	mux.Handle("POST   /articles/{id}/publish",
		limited(config.EndpointArticlePublish, PublishHandler{svc}))
}
