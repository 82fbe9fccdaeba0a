package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/knowvia/knowvia-server/internal/middleware"
	"github.com/knowvia/knowvia-server/internal/model"
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	Create(ctx context.Context, ownerEmail string, payload map[string]json.RawMessage) (string, error)
	List(ctx context.Context, category string) ([]*model.Article, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]*model.Article, error)
	Get(ctx context.Context, id string) (*model.Article, error)
	Update(ctx context.Context, id, callerEmail string, payload map[string]json.RawMessage) (*model.UpdateResult, error)
	Delete(ctx context.Context, id, callerEmail string) (*model.DeleteResult, error)
}

// ArticleHandler は記事管理のHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// updateResponse は記事更新のAPIレスポンス。
type updateResponse struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// deleteResponse は記事削除のAPIレスポンス。
type deleteResponse struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// articleDocument は記事を1つのJSONオブジェクトに平坦化したレスポンス。
// 任意フィールドの上にサーバー管理フィールドを重ねる。categoryは送られた値のまま返る。
type articleDocument map[string]interface{}

// toArticleDocument はmodel.ArticleをarticleDocumentに変換する。
func toArticleDocument(a *model.Article) articleDocument {
	doc := make(articleDocument, len(a.Fields)+5)
	for key, value := range a.Fields {
		doc[key] = value
	}

	likedBy := a.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}

	doc[model.ArticleFieldID] = a.ID
	doc[model.ArticleFieldUserEmail] = a.UserEmail
	doc[model.ArticleFieldLikedBy] = likedBy
	doc[model.ArticleFieldCreatedAt] = a.CreatedAt.Format(time.RFC3339Nano)
	if _, ok := doc[model.ArticleFieldCategory]; !ok && a.Category != nil {
		doc[model.ArticleFieldCategory] = *a.Category
	}
	return doc
}

func toArticleDocuments(articles []*model.Article) []articleDocument {
	docs := make([]articleDocument, len(articles))
	for i, a := range articles {
		docs[i] = toArticleDocument(a)
	}
	return docs
}

// CreateArticle は記事を作成する。
// POST /articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	payload, ok := decodeObject(w, r)
	if !ok {
		return
	}

	id, err := h.service.Create(r.Context(), email, payload)
	if err != nil {
		handleServiceError(w, r, err, "Failed to save article")
		return
	}

	writeJSON(w, r, http.StatusCreated, insertResponse{Acknowledged: true, InsertedID: id})
}

// ListArticles は記事一覧を返す。
// GET /articles?category=
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch articles")
		return
	}

	writeJSON(w, r, http.StatusOK, toArticleDocuments(articles))
}

// ListMyArticles は認証ユーザーが所有する記事一覧を返す。
// GET /myArticles
func (h *ArticleHandler) ListMyArticles(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	articles, err := h.service.ListByOwner(r.Context(), email)
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch articles")
		return
	}

	writeJSON(w, r, http.StatusOK, toArticleDocuments(articles))
}

// GetArticle は記事を1件返す。
// GET /articles/{id}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch article")
		return
	}

	writeJSON(w, r, http.StatusOK, toArticleDocument(article))
}

// UpdateArticle はボディのフィールドを記事にマージする。
// PATCH /articles/{id}
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	payload, ok := decodeObject(w, r)
	if !ok {
		return
	}

	result, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), email, payload)
	if err != nil {
		handleServiceError(w, r, err, "Update failed")
		return
	}

	writeJSON(w, r, http.StatusOK, updateResponse{
		Acknowledged:  true,
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	})
}

// DeleteArticle は記事を削除する。コメントは削除しない。
// DELETE /articles/{id}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	result, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), email)
	if err != nil {
		handleServiceError(w, r, err, "Deletion failed")
		return
	}

	writeJSON(w, r, http.StatusOK, deleteResponse{
		Acknowledged: true,
		DeletedCount: result.DeletedCount,
	})
}
