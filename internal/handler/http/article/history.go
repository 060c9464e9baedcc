package article

import (
	"net/http"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/pathutil"
	"seoforge/internal/handler/http/respond"
	artUC "seoforge/internal/usecase/article"
)

type HistoryHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事履歴取得
// @Summary      記事履歴取得
// @Description  記事の監査履歴を新しい順に取得します
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "記事ID (UUID)"
// @Success      200 {array} HistoryDTO "履歴一覧"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - article not found"
// @Router       /articles/{id}/history [get]
func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	entries, err := h.Svc.ArticleHistory(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}

	dtos := make([]HistoryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toHistoryDTO(e))
	}
	respond.JSON(w, http.StatusOK, dtos)
}
