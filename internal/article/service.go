// Package article は記事の作成・取得・更新・削除といいね切り替えを提供する。
package article

import (
	"context"
	"encoding/json"
	"time"

	"github.com/knowvia/knowvia-server/internal/model"
	"github.com/knowvia/knowvia-server/internal/repository"
)

// EventRecorder は記事に関するイベントを記録するインターフェース。
// metrics.Collectorが実装する。
type EventRecorder interface {
	RecordArticleCreated()
	RecordLikeToggled(liked bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordArticleCreated()   {}
func (nopRecorder) RecordLikeToggled(bool) {}

// ServiceConfig はArticleServiceの設定。
type ServiceConfig struct {
	// EnforceOwnership がtrueの場合、更新と削除を記事の所有者に限定する。
	EnforceOwnership bool
}

// Service は記事のCRUDを提供するサービス。
type Service struct {
	repo     repository.ArticleRepository
	config   ServiceConfig
	recorder EventRecorder
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderがnilの場合はイベントを記録しない。
func NewService(repo repository.ArticleRepository, config ServiceConfig, recorder EventRecorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		config:   config,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create は新しい記事を作成し、生成したIDを返す。
// 所有者は認証済みのownerEmailで決まり、ペイロード内の予約フィールドは無視する。
func (s *Service) Create(ctx context.Context, ownerEmail string, payload map[string]json.RawMessage) (string, error) {
	fields, _, category, err := splitPayload(payload)
	if err != nil {
		return "", err
	}

	article := &model.Article{
		ID:        model.NewID(),
		UserEmail: ownerEmail,
		Category:  category,
		Fields:    fields,
		LikedBy:   []string{},
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return "", err
	}

	s.recorder.RecordArticleCreated()
	return article.ID, nil
}

// List は記事一覧を新しい順に返す。categoryが空でなければ大文字小文字を無視して完全一致で絞り込む。
func (s *Service) List(ctx context.Context, category string) ([]*model.Article, error) {
	return s.repo.List(ctx, category)
}

// ListByOwner は認証済みユーザーが所有する記事を新しい順に返す。
func (s *Service) ListByOwner(ctx context.Context, ownerEmail string) ([]*model.Article, error) {
	return s.repo.ListByOwner(ctx, ownerEmail)
}

// Get は指定IDの記事を返す。IDの形式が不正な場合も記事未検出として扱う。
func (s *Service) Get(ctx context.Context, id string) (*model.Article, error) {
	if !model.IsValidID(id) {
		return nil, model.NewArticleNotFoundError(id)
	}

	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(id)
	}
	return article, nil
}

// Update は記事にペイロードのフィールドをマージする。
func (s *Service) Update(ctx context.Context, id, callerEmail string, payload map[string]json.RawMessage) (*model.UpdateResult, error) {
	if !model.IsValidID(id) {
		return nil, model.NewArticleNotFoundError(id)
	}

	fields, hasCategory, category, err := splitPayload(payload)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwner(ctx, id, callerEmail); err != nil {
		return nil, err
	}

	result, err := s.repo.Update(ctx, id, model.ArticlePatch{
		SetCategory: hasCategory,
		Category:    category,
		Fields:      fields,
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, model.NewArticleNotFoundError(id)
	}
	return result, nil
}

// Delete は記事を削除する。紐づくコメントは残る。
func (s *Service) Delete(ctx context.Context, id, callerEmail string) (*model.DeleteResult, error) {
	if !model.IsValidID(id) {
		return nil, model.NewArticleNotFoundError(id)
	}

	if err := s.checkOwner(ctx, id, callerEmail); err != nil {
		return nil, err
	}

	result, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.DeletedCount == 0 {
		return nil, model.NewArticleNotFoundError(id)
	}
	return result, nil
}

// checkOwner は所有者チェックが有効な場合に呼び出し元が記事の所有者か検証する。
func (s *Service) checkOwner(ctx context.Context, id, callerEmail string) error {
	if !s.config.EnforceOwnership {
		return nil
	}

	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if article == nil {
		return model.NewArticleNotFoundError(id)
	}
	if article.UserEmail != callerEmail {
		return model.NewForbiddenError(id)
	}
	return nil
}

// splitPayload はクライアントのペイロードから予約フィールドを除いたフィールドを返す。
// categoryは送られた値のままフィールドに残し、キーの有無と文字列値も返す。
// categoryは文字列またはnullのみ受け付ける。
func splitPayload(payload map[string]json.RawMessage) (map[string]json.RawMessage, bool, *string, error) {
	fields := make(map[string]json.RawMessage, len(payload))
	var hasCategory bool
	var category *string

	for key, value := range payload {
		switch {
		case key == model.ArticleFieldCategory:
			hasCategory = true
			fields[key] = value
			if string(value) == "null" {
				continue
			}
			var c string
			if err := json.Unmarshal(value, &c); err != nil {
				return nil, false, nil, model.NewValidationError("category", "must be a string")
			}
			category = &c
		case model.IsReservedArticleField(key):
			// サーバー管理のフィールドは上書きさせない
		default:
			fields[key] = value
		}
	}

	return fields, hasCategory, category, nil
}
