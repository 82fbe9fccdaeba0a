package model

import (
	"encoding/json"
	"time"
)

// Article は投稿記事を表す。
// タイトルや本文などの任意フィールドはcategoryを含めてFieldsにそのまま保持し、
// 所有者・いいね集合・作成日時のみをサーバー側で管理する。
// CategoryはFields内のcategoryが文字列の場合の値で、絞り込み専用に保持する。
type Article struct {
	ID        string
	UserEmail string
	Category  *string
	Fields    map[string]json.RawMessage
	LikedBy   []string
	CreatedAt time.Time
}

// 記事ドキュメント上でサーバーが管理する予約フィールド名。
const (
	ArticleFieldID        = "_id"
	ArticleFieldUserEmail = "userEmail"
	ArticleFieldCategory  = "category"
	ArticleFieldLikedBy   = "likedBy"
	ArticleFieldCreatedAt = "createdAt"
)

// IsReservedArticleField はクライアントから上書きできないフィールドかどうかを返す。
// categoryはクライアントから変更可能なため予約扱いしない。
func IsReservedArticleField(name string) bool {
	switch name {
	case ArticleFieldID, ArticleFieldUserEmail, ArticleFieldLikedBy, ArticleFieldCreatedAt:
		return true
	}
	return false
}

// ArticlePatch は記事の部分更新内容を表す。
// SetCategoryがtrueの場合は絞り込み用カテゴリをCategoryで置き換える。Categoryがnilならnullにする。
type ArticlePatch struct {
	SetCategory bool
	Category    *string
	Fields      map[string]json.RawMessage
}

// UpdateResult は記事更新の結果を表す。
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// DeleteResult は記事削除の結果を表す。
type DeleteResult struct {
	DeletedCount int64
}

// LikeResult はいいねトグルの結果を表す。
type LikeResult struct {
	Message string
	Liked   bool
}

// いいねトグルの結果メッセージ。
const (
	LikeMessageLiked    = "Like Successful"
	LikeMessageDisliked = "Dislike Successful"
)
