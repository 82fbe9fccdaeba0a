package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/knowvia/knowvia-server/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// Create は新規コメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, article_id, user_id, user_name, user_photo, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		comment.ID, comment.ArticleID,
		comment.UserID, comment.UserName, comment.UserPhoto,
		comment.Body, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByArticle は指定記事のコメントを新しい順に取得する。
func (r *PostgresCommentRepo) ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	return r.queryComments(ctx, "コメント一覧",
		`SELECT id, article_id, user_id, user_name, user_photo, comment, created_at
		 FROM comments
		 WHERE article_id = $1
		 ORDER BY created_at DESC, id DESC`,
		articleID,
	)
}

// ListRecent は全記事を通じた最新コメントを取得する。
func (r *PostgresCommentRepo) ListRecent(ctx context.Context, limit int) ([]*model.Comment, error) {
	return r.queryComments(ctx, "最新コメント一覧",
		`SELECT id, article_id, user_id, user_name, user_photo, comment, created_at
		 FROM comments
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
}

// CountByArticleIDs は指定記事群に紐づくコメント数を返す。
// articleIDsが空の場合はDBに問い合わせず0を返す。
func (r *PostgresCommentRepo) CountByArticleIDs(ctx context.Context, articleIDs []string) (int64, error) {
	if len(articleIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE article_id = ANY($1::uuid[])`,
		pq.Array(articleIDs),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("コメント数の集計に失敗しました: %w", err)
	}
	return count, nil
}

func (r *PostgresCommentRepo) queryComments(ctx context.Context, label, query string, args ...interface{}) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%sの取得に失敗しました: %w", label, err)
	}
	defer rows.Close()

	comments := []*model.Comment{}
	for rows.Next() {
		c := &model.Comment{}
		if err := rows.Scan(
			&c.ID, &c.ArticleID, &c.UserID, &c.UserName, &c.UserPhoto,
			&c.Body, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("コメント行の読み取りに失敗しました: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%sの走査に失敗しました: %w", label, err)
	}

	return comments, nil
}

// コンパイル時にインターフェースの実装を検証する。
var _ CommentRepository = (*PostgresCommentRepo)(nil)
