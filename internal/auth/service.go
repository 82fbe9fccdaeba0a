// Package auth はベアラートークンの発行と検証を提供する。
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/knowvia/knowvia-server/internal/model"
)

// DefaultTokenTTL はトークンの既定の有効期間。
const DefaultTokenTTL = 2 * time.Hour

// ErrInvalidToken はトークンが不正または期限切れの場合のエラー。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに含めるクレーム。
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ServiceConfig はトークンサービスの設定。
type ServiceConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// Service はHS256署名のJWTを発行・検証する。
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService はServiceを生成する。TokenTTLが0以下の場合はDefaultTokenTTLを使用する。
func NewService(config ServiceConfig) *Service {
	ttl := config.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		secret: []byte(config.Secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はemailをクレームに持つトークンを発行する。
func (s *Service) Issue(email string) (string, error) {
	if email == "" {
		return "", model.NewValidationError("email", "is required")
	}

	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("token issued", slog.String("email", email))
	return token, nil
}

// Verify はトークンを検証し、クレームのemailを返す。
// 署名不一致・期限切れ・HS256以外のアルゴリズム・emailなしはすべてErrInvalidTokenを返す。
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: email claim is missing", ErrInvalidToken)
	}
	return claims.Email, nil
}
