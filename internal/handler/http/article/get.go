package article

import (
	"net/http"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/pathutil"
	"seoforge/internal/handler/http/respond"
	artUC "seoforge/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事詳細取得
// @Summary      記事詳細取得
// @Description  指定されたIDの記事を取得します（分析結果・生成結果を含む）
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "記事ID (UUID)"
// @Success      200 {object} DTO "記事詳細"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	art, err := h.Svc.Get(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(art))
}
