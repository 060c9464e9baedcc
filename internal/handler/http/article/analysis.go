package article

import (
	"encoding/json"
	"net/http"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/pathutil"
	"seoforge/internal/handler/http/respond"
	artUC "seoforge/internal/usecase/article"
)

type StartAnalysisHandler struct{ Svc *artUC.Service }

// ServeHTTP キーワード分析開始
// @Summary      キーワード分析開始
// @Description  記事のシードキーワードに対するキーワード分析ジョブを開始します。分析はバックグラウンドで実行されます。
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "記事ID (UUID)"
// @Success      202 {object} DTO "Accepted - 分析開始"
// @Failure      400 {string} string "Bad request - invalid article ID, or the current status does not allow starting an analysis"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Router       /articles/{id}/start-keyword-analysis [post]
func (h StartAnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.Svc.StartAnalysis(r.Context(), userID, id); err != nil {
		respondError(w, err)
		return
	}

	art, err := h.Svc.Get(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, toDTO(art))
}

type SelectKeywordsHandler struct{ Svc *artUC.Service }

// ServeHTTP キーワード選択
// @Summary      キーワード選択
// @Description  分析済みキーワードから記事生成に使うキーワードを選択します。選択と同時に記事生成ジョブが開始されます。
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "記事ID (UUID)"
// @Param        selection body object true "選択キーワード"
// @Success      202 {object} DTO "Accepted - 生成開始"
// @Failure      400 {string} string "Bad request - keyword not in analyzed set, or article is not awaiting keyword selection"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Router       /articles/{id}/select-keywords [post]
func (h SelectKeywordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.Svc.SelectKeywords(r.Context(), userID, id, req.Keywords); err != nil {
		respondError(w, err)
		return
	}

	art, err := h.Svc.Get(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, toDTO(art))
}
