package model

import "time"

// Comment は記事に紐づくコメントを表す。
// 投稿者情報は投稿時点のスナップショットであり、以後更新されない。
type Comment struct {
	ID        string
	ArticleID string
	UserID    string
	UserName  string
	UserPhoto string
	Body      string
	CreatedAt time.Time
}

// CommentInput はコメント投稿時にクライアントから受け取る内容。
type CommentInput struct {
	UserID    string
	UserName  string
	UserPhoto string
	Body      string
}

// DefaultRecentCommentLimit は最新コメント一覧のデフォルト件数。
const DefaultRecentCommentLimit = 10

// NotificationCounts は記事所有者向けの通知件数を表す。
type NotificationCounts struct {
	TotalLikes    int64
	TotalComments int64
}
