package article

import (
	"encoding/json"
	"net/http"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/pathutil"
	"seoforge/internal/handler/http/respond"
	artUC "seoforge/internal/usecase/article"
)

type UpdateHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事更新
// @Summary      記事更新
// @Description  記事のリクエスト項目を部分更新します。指定されなかった項目は変更されません。
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Param        id path string true "記事ID (UUID)"
// @Param        article body object true "更新内容"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Router       /articles/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Keyword           *string  `json:"keyword"`
		Target            *string  `json:"target"`
		ArticleType       *string  `json:"article_type"`
		Title             *string  `json:"title"`
		ImportantKeywords []string `json:"important_keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Update(r.Context(), artUC.UpdateInput{
		ID:                id,
		UserID:            auth.UserID(r.Context()),
		Keyword:           req.Keyword,
		Target:            req.Target,
		ArticleType:       req.ArticleType,
		Title:             req.Title,
		ImportantKeywords: req.ImportantKeywords,
	}); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
