package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/hitokoto/internal/model"
)

// MemoryPostRepo はプロセス内メモリに投稿を保持するリポジトリ。
// postsはid昇順に並び、CreatedAtもid順に非減少となる。
type MemoryPostRepo struct {
	mu    sync.RWMutex
	posts []*model.Post
	now   func() time.Time
}

// NewMemoryPostRepo はMemoryPostRepoを生成する。
func NewMemoryPostRepo() *MemoryPostRepo {
	return NewMemoryPostRepoWithClock(time.Now)
}

// NewMemoryPostRepoWithClock は時刻取得関数を指定してMemoryPostRepoを生成する。
// テストで時刻を固定する場合に使用する。
func NewMemoryPostRepoWithClock(now func() time.Time) *MemoryPostRepo {
	return &MemoryPostRepo{now: now}
}

// Append は投稿を追記する。
// 時計が巻き戻った場合は直前の投稿時刻に揃える。
func (r *MemoryPostRepo) Append(ctx context.Context, author, content string) (*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now()
	if n := len(r.posts); n > 0 && createdAt.Before(r.posts[n-1].CreatedAt) {
		createdAt = r.posts[n-1].CreatedAt
	}

	post := &model.Post{
		ID:        int64(len(r.posts) + 1),
		Author:    author,
		Content:   content,
		CreatedAt: createdAt,
	}
	r.posts = append(r.posts, post)

	cp := *post
	return &cp, nil
}

// ListRecent は新しい順に最大limit件の投稿を返す。
func (r *MemoryPostRepo) ListRecent(ctx context.Context, limit int) ([]*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*model.Post{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.posts)
	if limit > n {
		limit = n
	}

	// 追記順が(created_at, id)順と一致するため、末尾から逆順に取り出せばよい
	result := make([]*model.Post, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *r.posts[i]
		result = append(result, &cp)
	}
	return result, nil
}

// Ping は常に成功する。
func (r *MemoryPostRepo) Ping(_ context.Context) error {
	return nil
}

// compile-time interface check
var _ PostRepository = (*MemoryPostRepo)(nil)
