package article

import (
	"context"

	"github.com/knowvia/knowvia-server/internal/model"
	"github.com/knowvia/knowvia-server/internal/repository"
)

// LikeService は記事のいいね切り替えを提供するサービス。
// 認証は要求せず、リクエストで渡された識別子をそのまま使用する。
type LikeService struct {
	repo     repository.ArticleRepository
	recorder EventRecorder
}

// NewLikeService はLikeServiceの新しいインスタンスを生成する。
func NewLikeService(repo repository.ArticleRepository, recorder EventRecorder) *LikeService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &LikeService{repo: repo, recorder: recorder}
}

// Toggle はuserIdentityのいいね状態を反転し、反転後の状態を返す。
// 同じ利用者による2回のToggleで元の状態に戻る。
func (s *LikeService) Toggle(ctx context.Context, articleID, userIdentity string) (*model.LikeResult, error) {
	if !model.IsValidID(articleID) {
		return nil, model.NewArticleNotFoundError(articleID)
	}
	if userIdentity == "" {
		return nil, model.NewValidationError("email", "is required")
	}

	result, err := s.repo.ToggleLike(ctx, articleID, userIdentity)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	if result.Liked {
		result.Message = model.LikeMessageLiked
	} else {
		result.Message = model.LikeMessageDisliked
	}

	s.recorder.RecordLikeToggled(result.Liked)
	return result, nil
}
