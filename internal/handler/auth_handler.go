package handler

import (
	"net/http"
)

// TokenIssuer はトークン発行ハンドラーが必要とするインターフェース。
// auth.Serviceが実装する。
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// AuthHandler はトークン発行のHTTPハンドラー。
type AuthHandler struct {
	issuer TokenIssuer
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(issuer TokenIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer}
}

type issueTokenRequest struct {
	Email string `json:"email"`
}

type issueTokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// IssueToken はボディのemailを主体とするベアラートークンを発行する。
// POST /jwt
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.issuer.Issue(req.Email)
	if err != nil {
		handleServiceError(w, r, err, "Failed to create token")
		return
	}

	writeJSON(w, r, http.StatusOK, issueTokenResponse{
		Token:   token,
		Message: "JWT Created Successfully!",
	})
}
