// Package settings exposes the per-user settings API. Values for sensitive
// keys are masked on every read; the plaintext never appears in a response.
package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"seoforge/internal/domain/entity"
	"seoforge/internal/handler/http/auth"
	"seoforge/internal/handler/http/respond"
	settingsUC "seoforge/internal/usecase/settings"
)

func respondError(w http.ResponseWriter, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.Is(err, settingsUC.ErrSettingNotFound):
		respond.Error(w, http.StatusNotFound, err)
	case errors.As(err, &ve):
		respond.Error(w, http.StatusBadRequest, err)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

type ListHandler struct{ Svc *settingsUC.Service }

// ServeHTTP 設定一覧取得
// @Summary      設定一覧取得
// @Description  ユーザーの設定一覧を取得します(機密値はマスクされます)
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} settings.View "OK"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Router       /settings [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	views, err := h.Svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, views)
}

type UpsertHandler struct{ Svc *settingsUC.Service }

// ServeHTTP 設定登録・更新
// @Summary      設定登録・更新
// @Description  設定値を登録または更新します(機密キーは暗号化して保存します)
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Param        setting body object true "設定情報"
// @Success      204 {string} string "No Content"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Router       /settings [put]
func (h UpsertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := h.Svc.Upsert(r.Context(), auth.UserID(r.Context()), req.Key, req.Value); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type DeleteHandler struct{ Svc *settingsUC.Service }

// ServeHTTP 設定削除
// @Summary      設定削除
// @Description  指定キーの設定を削除します
// @Tags         settings
// @Security     BearerAuth
// @Success      204 {string} string "No Content"
// @Failure      404 {string} string "Not found"
// @Failure      429 {string} string "Too many requests - rate limit exceeded"
// @Router       /settings/{key} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		respond.Error(w, http.StatusBadRequest, errors.New("key is required"))
		return
	}
	if err := h.Svc.Delete(r.Context(), auth.UserID(r.Context()), key); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
