// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/knowvia/knowvia-server/internal/model"
)

// ArticleRepository は記事データの永続化インターフェース。
// IDはUUID形式であることを呼び出し側で検証済みとする。
type ArticleRepository interface {
	// Create は記事を作成する。
	Create(ctx context.Context, article *model.Article) error

	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// List は記事を新しい順に取得する。
	// categoryが空でない場合は大文字小文字を区別しない完全一致で絞り込む。
	List(ctx context.Context, category string) ([]*model.Article, error)

	// ListByOwner は指定ユーザーが所有する記事を新しい順に取得する。
	ListByOwner(ctx context.Context, ownerEmail string) ([]*model.Article, error)

	// Update は記事の任意フィールドに部分更新をマージする。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id string, patch model.ArticlePatch) (*model.UpdateResult, error)

	// Delete は記事を削除する。見つからない場合はDeletedCountが0になる。
	// 関連するコメントは削除しない。
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)

	// ToggleLike はlikedByにおけるuserIdentityの有無を単一のUPDATEで反転する。
	// 見つからない場合はnilを返す。返却値のMessageは設定しない。
	ToggleLike(ctx context.Context, id, userIdentity string) (*model.LikeResult, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成する。記事の存在確認は行わない。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByArticle は指定記事のコメントを新しい順に取得する。
	ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error)

	// ListRecent は全記事を通じた最新コメントを最大limit件取得する。
	ListRecent(ctx context.Context, limit int) ([]*model.Comment, error)

	// CountByArticleIDs はarticleIDsのいずれかに紐づくコメント数を返す。
	CountByArticleIDs(ctx context.Context, articleIDs []string) (int64, error)
}
