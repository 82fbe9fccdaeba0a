package model

import "github.com/google/uuid"

// NewID は記事・コメント用の新しいIDを生成する。
func NewID() string {
	return uuid.New().String()
}

// IsValidID はidがUUID形式かどうかを返す。
// 形式が不正なIDは存在しないIDと同様に扱う。
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
