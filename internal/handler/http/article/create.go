package article

import (
	"encoding/json"
	"net/http"

	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/respond"
	artUC "seoforge/internal/usecase/article"
)

type CreateHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事作成
// @Summary      記事作成
// @Description  シードキーワードから新しい記事リクエストを作成します
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        article body object true "記事情報"
// @Success      201 {object} DTO "Created"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Router       /articles [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword           string   `json:"keyword"`
		Target            string   `json:"target"`
		ArticleType       string   `json:"article_type"`
		ImportantKeywords []string `json:"important_keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	art, err := h.Svc.Create(r.Context(), artUC.CreateInput{
		UserID:            auth.UserID(r.Context()),
		Keyword:           req.Keyword,
		Target:            req.Target,
		ArticleType:       req.ArticleType,
		ImportantKeywords: req.ImportantKeywords,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(art))
}
