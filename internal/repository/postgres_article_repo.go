package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/knowvia/knowvia-server/internal/model"
)

const articleColumns = `id, user_email, category, fields, liked_by, created_at`

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// Create は新規記事を作成する。
func (r *PostgresArticleRepo) Create(ctx context.Context, article *model.Article) error {
	fields, err := marshalFields(article.Fields)
	if err != nil {
		return err
	}

	likedBy := article.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO articles (id, user_email, category, fields, liked_by, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5, $6)`,
		article.ID, article.UserEmail, article.Category, fields,
		pq.Array(likedBy), article.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`,
		id,
	)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return article, nil
}

// List は記事を新しい順に取得する。categoryが空でなければ絞り込む。
func (r *PostgresArticleRepo) List(ctx context.Context, category string) ([]*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	var args []interface{}

	if category != "" {
		query += ` WHERE lower(category) = lower($1)`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return r.queryArticles(ctx, "記事一覧", query, args...)
}

// ListByOwner は指定ユーザーの記事を新しい順に取得する。
func (r *PostgresArticleRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]*model.Article, error) {
	return r.queryArticles(ctx, "所有記事一覧",
		`SELECT `+articleColumns+` FROM articles
		 WHERE user_email = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerEmail,
	)
}

// Update は記事のfieldsにpatchをマージし、SetCategoryがtrueならcategory列を置き換える。
// 更新前後で内容が変わったかどうかをModifiedCountで返す。
func (r *PostgresArticleRepo) Update(ctx context.Context, id string, patch model.ArticlePatch) (*model.UpdateResult, error) {
	fields, err := marshalFields(patch.Fields)
	if err != nil {
		return nil, err
	}

	var category sql.NullString
	if patch.Category != nil {
		category = sql.NullString{String: *patch.Category, Valid: true}
	}

	var modified bool
	err = r.db.QueryRowContext(ctx,
		`WITH target AS (
		     SELECT id, fields, category FROM articles WHERE id = $1 FOR UPDATE
		 )
		 UPDATE articles a SET
		     fields = t.fields || $2::jsonb,
		     category = CASE WHEN $3::boolean THEN $4::text ELSE t.category END
		 FROM target t
		 WHERE a.id = t.id
		 RETURNING (t.fields IS DISTINCT FROM a.fields OR t.category IS DISTINCT FROM a.category)`,
		id, fields, patch.SetCategory, category,
	).Scan(&modified)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	result := &model.UpdateResult{MatchedCount: 1}
	if modified {
		result.ModifiedCount = 1
	}
	return result, nil
}

// Delete は指定IDの記事を削除する。
func (r *PostgresArticleRepo) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("記事の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return &model.DeleteResult{DeletedCount: rowsAffected}, nil
}

// ToggleLike はlikedByにuserIdentityが含まれていれば取り除き、含まれていなければ追加する。
// 判定と書き込みを1つのUPDATE文で行うため、同一記事への同時トグルは行ロックで直列化される。
func (r *PostgresArticleRepo) ToggleLike(ctx context.Context, id, userIdentity string) (*model.LikeResult, error) {
	var liked bool
	err := r.db.QueryRowContext(ctx,
		`UPDATE articles SET liked_by = CASE
		     WHEN $2 = ANY(liked_by) THEN array_remove(liked_by, $2)
		     ELSE array_append(liked_by, $2)
		 END
		 WHERE id = $1
		 RETURNING $2 = ANY(liked_by)`,
		id, userIdentity,
	).Scan(&liked)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("いいねの切り替えに失敗しました: %w", err)
	}
	return &model.LikeResult{Liked: liked}, nil
}

func (r *PostgresArticleRepo) queryArticles(ctx context.Context, label, query string, args ...interface{}) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%sの取得に失敗しました: %w", label, err)
	}
	defer rows.Close()

	articles := []*model.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("記事行の読み取りに失敗しました: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%sの走査に失敗しました: %w", label, err)
	}

	return articles, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	article := &model.Article{}
	var fields []byte
	var likedBy pq.StringArray

	if err := row.Scan(
		&article.ID, &article.UserEmail, &article.Category,
		&fields, &likedBy, &article.CreatedAt,
	); err != nil {
		return nil, err
	}

	article.Fields = map[string]json.RawMessage{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &article.Fields); err != nil {
			return nil, fmt.Errorf("記事フィールドの解析に失敗しました: %w", err)
		}
	}
	article.LikedBy = []string(likedBy)
	if article.LikedBy == nil {
		article.LikedBy = []string{}
	}

	return article, nil
}

func marshalFields(fields map[string]json.RawMessage) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("記事フィールドのエンコードに失敗しました: %w", err)
	}
	return string(b), nil
}

// コンパイル時にインターフェースの実装を検証する。
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
