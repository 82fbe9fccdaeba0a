package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowvia/knowvia-server/internal/model"
)

// LikeServiceInterface はいいねハンドラーが必要とするサービスインターフェース。
type LikeServiceInterface interface {
	Toggle(ctx context.Context, articleID, userIdentity string) (*model.LikeResult, error)
}

// LikeHandler はいいね切り替えのHTTPハンドラー。
type LikeHandler struct {
	service LikeServiceInterface
}

// NewLikeHandler はLikeHandlerを生成する。
func NewLikeHandler(service LikeServiceInterface) *LikeHandler {
	return &LikeHandler{service: service}
}

// toggleLikeRequest はいいね切り替えリクエストのボディ。
type toggleLikeRequest struct {
	Email string `json:"email"`
}

// likeResponse はいいね切り替えのAPIレスポンス。
type likeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

// ToggleLike はボディのemailでいいねを付け外しする。
// PATCH /like/{articleId}
func (h *LikeHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	var req toggleLikeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.Toggle(r.Context(), chi.URLParam(r, "articleId"), req.Email)
	if err != nil {
		handleServiceError(w, r, err, "Failed to toggle like")
		return
	}

	writeJSON(w, r, http.StatusOK, likeResponse{Message: result.Message, Liked: result.Liked})
}
