package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/hitokoto/internal/model"
)

// postAppendLockKey は投稿追記を直列化するアドバイザリロックのキー。
const postAppendLockKey = 7238010001

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// Append は投稿を追記する。
// トランザクションスコープのアドバイザリロックを取得してから採番するため、
// idの順序とcreated_atの順序は常に一致する。
func (r *PostgresPostRepo) Append(ctx context.Context, author, content string) (*model.Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, postAppendLockKey); err != nil {
		return nil, fmt.Errorf("failed to acquire append lock: %w", err)
	}

	post := &model.Post{Author: author, Content: content}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO posts (author, content, created_at)
		 VALUES ($1, $2, GREATEST(clock_timestamp(), COALESCE((SELECT max(created_at) FROM posts), '-infinity')))
		 RETURNING id, created_at`,
		author, content,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return post, nil
}

// ListRecent は新しい順に最大limit件の投稿を返す。
func (r *PostgresPostRepo) ListRecent(ctx context.Context, limit int) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author, content, created_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		p := &model.Post{}
		if err := rows.Scan(&p.ID, &p.Author, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// Ping はデータベースへの疎通を確認する。
func (r *PostgresPostRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
