package handler

import (
	"context"
	"net/http"

	"github.com/knowvia/knowvia-server/internal/middleware"
	"github.com/knowvia/knowvia-server/internal/model"
)

// NotificationServiceInterface は通知ハンドラーが必要とするサービスインターフェース。
type NotificationServiceInterface interface {
	Counts(ctx context.Context, ownerEmail string) (*model.NotificationCounts, error)
}

// NotificationHandler は通知件数のHTTPハンドラー。
type NotificationHandler struct {
	service NotificationServiceInterface
}

// NewNotificationHandler はNotificationHandlerを生成する。
func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type countsResponse struct {
	TotalLikes    int64 `json:"totalLikes"`
	TotalComments int64 `json:"totalComments"`
}

// GetCounts は認証ユーザーの記事に対するいいね数とコメント数を返す。
// GET /notifications/counts
func (h *NotificationHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	counts, err := h.service.Counts(r.Context(), email)
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch counts")
		return
	}

	writeJSON(w, r, http.StatusOK, countsResponse{
		TotalLikes:    counts.TotalLikes,
		TotalComments: counts.TotalComments,
	})
}
