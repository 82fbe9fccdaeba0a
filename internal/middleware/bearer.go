// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/knowvia/knowvia-server/internal/model"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// emailContextKey はリクエストコンテキストに認証済みemailを格納するためのキー。
	emailContextKey = contextKey("email")
	// requestInfoContextKey はロギングミドルウェアと認証結果を共有するためのキー。
	requestInfoContextKey = contextKey("request_info")
)

// requestInfo は外側のミドルウェアから参照するリクエスト単位の情報。
type requestInfo struct {
	email string
}

// TokenVerifier はベアラートークンの検証に必要なインターフェース。
// auth.Serviceが実装する。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証し、
// 認証済みemailをリクエストコンテキストに注入するミドルウェアを返す。
// ヘッダーがない、形式が不正、検証に失敗した場合は401を返す。
func NewBearerAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			email, err := verifier.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				slog.Warn("token verification failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithEmail(r.Context(), email)))
		})
	}
}

// EmailFromContext はリクエストコンテキストから認証済みemailを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func EmailFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(emailContextKey).(string)
	if !ok || email == "" {
		return "", fmt.Errorf("email not found in context")
	}
	return email, nil
}

// ContextWithEmail はコンテキストに認証済みemailを注入する。
// ロギングミドルウェアが用意したrequestInfoがあれば、そちらにも記録する。
func ContextWithEmail(ctx context.Context, email string) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.email = email
	}
	return context.WithValue(ctx, emailContextKey, email)
}
