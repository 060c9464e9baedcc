package settings

import (
	"net/http"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/middleware"
	settingsUC "seoforge/internal/usecase/settings"
	"seoforge/pkg/config"
)

// Register registers the settings HTTP handlers with the given mux. All
// routes require authentication and a rate limit; the write operations
// share one bucket so a client cannot burn the budget on updates and keep
// deleting.
func Register(mux *http.ServeMux, svc *settingsUC.Service, rl *middleware.RateLimit) {
	limited := func(h http.Handler) http.Handler {
		return auth.Authz(rl.Endpoint(config.EndpointSettingsWrite)(h))
	}

	mux.Handle("GET    /settings", auth.Authz(rl.Endpoint(config.EndpointSettingsRead)(ListHandler{svc})))
	mux.Handle("PUT    /settings", limited(UpsertHandler{svc}))
	mux.Handle("DELETE /settings/{key}", limited(DeleteHandler{svc}))
}
