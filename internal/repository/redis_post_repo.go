package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hitoshi/hitokoto/internal/model"
	"github.com/redis/go-redis/v9"
)

// appendScript は採番・時刻の補正・保存を1回のスクリプト実行で行う。
// KEYS: 1=シーケンス, 2=投稿ハッシュのプレフィックス, 3=タイムライン(sorted set), 4=最終投稿時刻
// ARGV: 1=author, 2=content, 3=created_at（UNIXマイクロ秒の10進文字列）
// 時刻は文字列のまま保存する。Luaの数値を文字列化すると桁が丸められるため。
var appendScript = redis.NewScript(`
local ts = ARGV[3]
local last = redis.call('GET', KEYS[4])
if last and tonumber(ts) < tonumber(last) then ts = last end
local id = redis.call('INCR', KEYS[1])
redis.call('HSET', KEYS[2] .. id, 'author', ARGV[1], 'content', ARGV[2], 'created_at', ts)
redis.call('ZADD', KEYS[3], id, id)
redis.call('SET', KEYS[4], ts)
return {id, ts}
`)

// RedisPostRepo はRedisを使用した投稿リポジトリ。
// タイムラインはidをスコアとするsorted setで保持する。
type RedisPostRepo struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisPostRepo はRedisPostRepoを生成する。
// prefixはキー名の先頭に付与され、同一DB内で複数のタイムラインを分離できる。
func NewRedisPostRepo(client *redis.Client, prefix string) *RedisPostRepo {
	if prefix == "" {
		prefix = "hitokoto"
	}
	return &RedisPostRepo{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisPostRepo) seqKey() string       { return r.prefix + ":posts:seq" }
func (r *RedisPostRepo) postKeyPrefix() string { return r.prefix + ":post:" }
func (r *RedisPostRepo) timelineKey() string  { return r.prefix + ":timeline" }
func (r *RedisPostRepo) lastKey() string      { return r.prefix + ":posts:last_created_at" }

// Append は投稿を追記する。
func (r *RedisPostRepo) Append(ctx context.Context, author, content string) (*model.Post, error) {
	keys := []string{r.seqKey(), r.postKeyPrefix(), r.timelineKey(), r.lastKey()}
	res, err := appendScript.Run(ctx, r.client, keys, author, content, r.now().UnixMicro()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to append post: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected append result: %v", res)
	}

	return &model.Post{
		ID:        res[0],
		Author:    author,
		Content:   content,
		CreatedAt: time.UnixMicro(res[1]),
	}, nil
}

// ListRecent は新しい順に最大limit件の投稿を返す。
func (r *RedisPostRepo) ListRecent(ctx context.Context, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		return []*model.Post{}, nil
	}

	ids, err := r.client.ZRevRange(ctx, r.timelineKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list post ids: %w", err)
	}
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.postKeyPrefix()+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	posts := make([]*model.Post, 0, len(ids))
	for i, cmd := range cmds {
		post, err := decodeRedisPost(ids[i], cmd.Val())
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Ping はRedisへの疎通を確認する。
func (r *RedisPostRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// decodeRedisPost はハッシュの内容からPostを復元する。
func decodeRedisPost(id string, fields map[string]string) (*model.Post, error) {
	postID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", id, err)
	}
	micros, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for post %d: %w", postID, err)
	}
	return &model.Post{
		ID:        postID,
		Author:    fields["author"],
		Content:   fields["content"],
		CreatedAt: time.UnixMicro(micros),
	}, nil
}

// compile-time interface check
var _ PostRepository = (*RedisPostRepo)(nil)
