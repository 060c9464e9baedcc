package article

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/pathutil"
	"seoforge/internal/handler/http/respond"
	artUC "seoforge/internal/usecase/article"
)

type PublishHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事公開
// @Summary      記事公開
// @Description  生成済みの記事を外部CMSへ公開します。target を省略した場合は shopify に公開します。
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "記事ID (UUID)"
// @Param        target body object false "公開先 (shopify | wordpress)"
// @Success      200 {object} object "公開結果"
// @Failure      400 {string} string "Bad request - unknown publish target, or article has no generated content"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Failure      502 {string} string "CMS 側のエラー"
// @Router       /articles/{id}/publish [post]
func (h PublishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	// Body is optional; an empty body publishes to the default target.
	var req struct {
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Target == "" {
		req.Target = "shopify"
	}

	externalID, err := h.Svc.Publish(r.Context(), auth.UserID(r.Context()), id, req.Target)
	if err != nil {
		code := statusForError(err)
		if code == http.StatusInternalServerError {
			// The article was fine; the CMS call failed.
			respond.SafeError(w, http.StatusBadGateway, err)
			return
		}
		respondError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"external_article_id": externalID,
		"target":              req.Target,
	})
}
