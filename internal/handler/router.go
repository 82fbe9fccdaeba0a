package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowvia/knowvia-server/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	CORSAllowedOrigins []string
	TokenVerifier      middleware.TokenVerifier
	HTTPMetrics        middleware.HTTPMetricsRecorder
	MetricsHandler     http.Handler

	// 稼働確認
	DB Pinger

	// 認証
	TokenIssuer TokenIssuer

	// 記事
	ArticleService ArticleServiceInterface
	LikeService    LikeServiceInterface

	// コメント・通知
	CommentService      CommentServiceInterface
	NotificationService NotificationServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → (BearerAuth)
//
// BearerAuthは認証が必要なルートのグループにのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))

	healthHandler := NewHealthHandler(deps.DB)
	authHandler := NewAuthHandler(deps.TokenIssuer)
	articleHandler := NewArticleHandler(deps.ArticleService)
	likeHandler := NewLikeHandler(deps.LikeService)
	commentHandler := NewCommentHandler(deps.CommentService)
	notificationHandler := NewNotificationHandler(deps.NotificationService)

	// --- 認証不要のルート ---
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Post("/jwt", authHandler.IssueToken)

	r.Get("/articles", articleHandler.ListArticles)
	r.Get("/articles/{id}", articleHandler.GetArticle)
	r.Patch("/like/{articleId}", likeHandler.ToggleLike)

	r.Post("/articles/{id}/comments", commentHandler.CreateComment)
	// /comments/recent は /comments/{articleId} より優先される
	r.Get("/comments/recent", commentHandler.ListRecentComments)
	r.Get("/comments/{articleId}", commentHandler.ListArticleComments)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier))

		r.Post("/articles", articleHandler.CreateArticle)
		r.Get("/myArticles", articleHandler.ListMyArticles)
		r.Patch("/articles/{id}", articleHandler.UpdateArticle)
		r.Delete("/articles/{id}", articleHandler.DeleteArticle)

		r.Get("/notifications/counts", notificationHandler.GetCounts)
	})

	return r
}
