// Package notification は記事所有者向けの通知件数を集計する。
package notification

import (
	"context"

	"github.com/knowvia/knowvia-server/internal/model"
	"github.com/knowvia/knowvia-server/internal/repository"
)

// Service は通知件数の集計サービス。
// 件数は呼び出しごとに再計算し、キャッシュしない。
type Service struct {
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(articleRepo repository.ArticleRepository, commentRepo repository.CommentRepository) *Service {
	return &Service{
		articleRepo: articleRepo,
		commentRepo: commentRepo,
	}
}

// Counts はownerEmailが所有する全記事のいいね総数とコメント総数を返す。
// 記事一覧の取得とコメント数の集計は別々のクエリで行うため、
// 並行する更新に対して同一スナップショットは保証しない。
func (s *Service) Counts(ctx context.Context, ownerEmail string) (*model.NotificationCounts, error) {
	articles, err := s.articleRepo.ListByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	counts := &model.NotificationCounts{}
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		counts.TotalLikes += int64(len(a.LikedBy))
		ids = append(ids, a.ID)
	}

	totalComments, err := s.commentRepo.CountByArticleIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts.TotalComments = totalComments

	return counts, nil
}
