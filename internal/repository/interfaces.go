// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/hitokoto/internal/model"
)

// PostRepository は投稿データの永続化インターフェース。
// 追記専用のログとして扱い、更新・削除操作は提供しない。
type PostRepository interface {
	// Append は投稿を追記し、採番済みのレコードを返す。
	// IDは厳密に単調増加し、CreatedAtは直前の追記以上となる。
	// 並行呼び出しに対してアトミックに振る舞う。
	Append(ctx context.Context, author, content string) (*model.Post, error)

	// ListRecent は新しい順（created_at降順、同時刻はid降順）に最大limit件の投稿を返す。
	ListRecent(ctx context.Context, limit int) ([]*model.Post, error)

	// Ping はストレージへの疎通を確認する。
	Ping(ctx context.Context) error
}
