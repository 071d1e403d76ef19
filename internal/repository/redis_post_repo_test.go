package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestDecodeRedisPost(t *testing.T) {
	created := time.Date(2026, 10, 15, 9, 30, 0, 123000, time.UTC)
	post, err := decodeRedisPost("42", map[string]string{
		"author":     "Alice",
		"content":    "hello",
		"created_at": "1792056600000123",
	})
	if err != nil {
		t.Fatalf("decodeRedisPost returned error: %v", err)
	}
	if post.ID != 42 {
		t.Errorf("ID = %d, want 42", post.ID)
	}
	if post.Author != "Alice" || post.Content != "hello" {
		t.Errorf("post = %+v", post)
	}
	if post.CreatedAt.UnixMicro() != 1792056600000123 {
		t.Errorf("CreatedAt = %v, want unix micro 1792056600000123 (%v)", post.CreatedAt, created)
	}
}

func TestDecodeRedisPost_InvalidFields_ReturnsError(t *testing.T) {
	if _, err := decodeRedisPost("abc", map[string]string{"created_at": "1"}); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if _, err := decodeRedisPost("1", map[string]string{}); err == nil {
		t.Error("expected error for missing created_at")
	}
}

func newTestRedisRepo(t *testing.T) *RedisPostRepo {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("invalid TEST_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	prefix := "hitokoto-test-" + uuid.New().String()
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		client.Close()
	})
	return NewRedisPostRepo(client, prefix)
}

func TestRedisPostRepo_AppendAndListRecent(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	for i, c := range []string{"first", "second", "third"} {
		post, err := repo.Append(ctx, "Alice", c)
		if err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
		if post.ID != int64(i+1) {
			t.Errorf("ID = %d, want %d", post.ID, i+1)
		}
	}

	posts, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(posts) != len(want) {
		t.Fatalf("len(posts) = %d, want %d", len(posts), len(want))
	}
	for i, p := range posts {
		if p.Content != want[i] {
			t.Errorf("posts[%d].Content = %q, want %q", i, p.Content, want[i])
		}
	}
}

func TestRedisPostRepo_Append_ClampsClockGoingBackwards(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }
	first, err := repo.Append(ctx, "a", "one")
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	repo.now = func() time.Time { return base.Add(-time.Hour) }
	second, err := repo.Append(ctx, "a", "two")
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("second.CreatedAt = %v, want %v", second.CreatedAt, first.CreatedAt)
	}
}
