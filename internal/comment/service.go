// Package comment は記事へのコメント投稿と一覧取得を提供する。
package comment

import (
	"context"
	"time"

	"github.com/knowvia/knowvia-server/internal/model"
	"github.com/knowvia/knowvia-server/internal/repository"
)

// EventRecorder はコメント投稿を記録する。
type EventRecorder interface {
	RecordCommentCreated()
}

type nopRecorder struct{}

func (nopRecorder) RecordCommentCreated() {}

// Service はコメントの投稿・取得を行うサービス。
type Service struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	recorder    EventRecorder
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	recorder EventRecorder,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		recorder:    recorder,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create は記事にコメントを投稿し、生成したIDを返す。
// 参照先記事の存在は確認しない。本文と投稿者情報は送られたまま保存し、投稿日時はサーバー側で付与する。
func (s *Service) Create(ctx context.Context, articleID string, input model.CommentInput) (string, error) {
	if !model.IsValidID(articleID) {
		return "", model.NewArticleNotFoundError(articleID)
	}

	c := &model.Comment{
		ID:        model.NewID(),
		ArticleID: articleID,
		UserID:    input.UserID,
		UserName:  input.UserName,
		UserPhoto: input.UserPhoto,
		Body:      input.Body,
		CreatedAt: s.now(),
	}

	if err := s.commentRepo.Create(ctx, c); err != nil {
		return "", err
	}

	s.recorder.RecordCommentCreated()
	return c.ID, nil
}

// ListByArticle は記事のコメントを新しい順に返す。
// 記事が存在しない場合は記事未検出エラーを返す。
func (s *Service) ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	if !model.IsValidID(articleID) {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	return s.commentRepo.ListByArticle(ctx, articleID)
}

// ListRecent は全記事を通じた最新コメントを新しい順に最大limit件返す。
// limitが0以下の場合はDefaultRecentCommentLimitを使用する。
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*model.Comment, error) {
	if limit <= 0 {
		limit = model.DefaultRecentCommentLimit
	}
	return s.commentRepo.ListRecent(ctx, limit)
}
