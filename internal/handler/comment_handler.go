package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/knowvia/knowvia-server/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	Create(ctx context.Context, articleID string, input model.CommentInput) (string, error)
	ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Comment, error)
}

// CommentHandler はコメントのHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// createCommentRequest はコメント投稿リクエストのボディ。
type createCommentRequest struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserPhoto string `json:"user_photo"`
	Comment   string `json:"comment"`
}

// commentResponse はコメントのAPIレスポンス。
type commentResponse struct {
	ID        string `json:"_id"`
	ArticleID string `json:"article_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserPhoto string `json:"user_photo"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// recentCommentResponse は最新コメント一覧の要素。記事IDを文字列でも持つ。
type recentCommentResponse struct {
	commentResponse
	ArticleIDString string `json:"articleId"`
}

func toCommentResponse(c *model.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		UserPhoto: c.UserPhoto,
		Comment:   c.Body,
		CreatedAt: c.CreatedAt.Format(time.RFC3339Nano),
	}
}

// CreateComment は記事にコメントを投稿する。
// POST /articles/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.service.Create(r.Context(), chi.URLParam(r, "id"), model.CommentInput{
		UserID:    req.UserID,
		UserName:  req.UserName,
		UserPhoto: req.UserPhoto,
		Body:      req.Comment,
	})
	if err != nil {
		handleServiceError(w, r, err, "Failed to save comment")
		return
	}

	writeJSON(w, r, http.StatusCreated, insertResponse{Acknowledged: true, InsertedID: id})
}

// ListRecentComments は全記事を通じた最新コメントを返す。
// GET /comments/recent
func (h *CommentHandler) ListRecentComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListRecent(r.Context(), model.DefaultRecentCommentLimit)
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch recent comments")
		return
	}

	resp := make([]recentCommentResponse, len(comments))
	for i, c := range comments {
		resp[i] = recentCommentResponse{
			commentResponse: toCommentResponse(c),
			ArticleIDString: c.ArticleID,
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// ListArticleComments は記事のコメント一覧を返す。記事が存在しなければ404。
// GET /comments/{articleId}
func (h *CommentHandler) ListArticleComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListByArticle(r.Context(), chi.URLParam(r, "articleId"))
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch article")
		return
	}

	resp := make([]commentResponse, len(comments))
	for i, c := range comments {
		resp[i] = toCommentResponse(c)
	}
	writeJSON(w, r, http.StatusOK, resp)
}
