// Package timeline はタイムラインサービスを提供する。
// 投稿者の識別、投稿内容の検証と保存、新しい順のタイムライン取得を担う。
package timeline

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/hitokoto/internal/model"
	"github.com/hitoshi/hitokoto/internal/repository"
)

// DefaultLimit はタイムラインで返す投稿の既定の最大件数。
const DefaultLimit = 1000

// SessionStore はタイムラインサービスが必要とするセッション操作のインターフェース。
type SessionStore interface {
	CreateSession(name string) (*model.Session, string, error)
	ResolveSession(credential string) model.Identity
	DestroySession(credential string)
}

// MetricsRecorder はタイムライン操作のメトリクスを記録するインターフェース。
type MetricsRecorder interface {
	RecordPostCreated()
	RecordPostRejected(reason string)
	RecordLogin()
	RecordLogout()
}

// Config はタイムラインサービスの設定。
type Config struct {
	Limit    int            // タイムラインの最大件数。範囲外の場合はDefaultLimit
	Location *time.Location // 表示用の日時を整形するタイムゾーン。nilの場合はUTC
}

// Service はクライアントに公開される唯一の窓口。
// 投稿ストアは生成時に注入され、サービスが所有する。
type Service struct {
	posts    repository.PostRepository
	sessions SessionStore
	metrics  MetricsRecorder
	limit    int
	location *time.Location
}

// NewService はServiceを生成する。metricsがnilの場合は記録しない。
func NewService(
	posts repository.PostRepository,
	sessions SessionStore,
	metrics MetricsRecorder,
	config Config,
) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	limit := config.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	loc := config.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		posts:    posts,
		sessions: sessions,
		metrics:  metrics,
		limit:    limit,
		location: loc,
	}
}

// Login は表示名でセッションを発行し、セッションとクレデンシャルを返す。
func (s *Service) Login(name string) (*model.Session, string, error) {
	session, credential, err := s.sessions.CreateSession(name)
	if err != nil {
		return nil, "", err
	}
	s.metrics.RecordLogin()
	slog.Info("user logged in", slog.String("user_name", session.DisplayName))
	return session, credential, nil
}

// Logout はクレデンシャルを失効させる。何度呼び出しても同じ結果になる。
func (s *Service) Logout(credential string) {
	s.sessions.DestroySession(credential)
	s.metrics.RecordLogout()
}

// CheckLogin はクレデンシャルのログイン状態を返す。
func (s *Service) CheckLogin(credential string) model.Identity {
	return s.sessions.ResolveSession(credential)
}

// SubmitPost はログイン中のユーザーとして投稿を作成する。
//  1. セッションを解決し、未ログインならUnauthorized
//  2. 内容をトリムし、空ならEmptyContent
//  3. 50文字を超えるならContentTooLong
//  4. 保存に失敗したらPersistenceFailed
//
// 投稿者名は投稿時点のセッション名で固定される。
func (s *Service) SubmitPost(ctx context.Context, credential, rawContent string) (*model.Post, error) {
	identity := s.sessions.ResolveSession(credential)
	if !identity.LoggedIn {
		s.metrics.RecordPostRejected(model.ErrCodeUnauthorized)
		return nil, model.NewUnauthorizedError()
	}

	content, err := ValidateContent(rawContent)
	if err != nil {
		s.metrics.RecordPostRejected(err.Code)
		return nil, err
	}

	post, appendErr := s.posts.Append(ctx, identity.Name, content)
	if appendErr != nil {
		slog.Error("failed to append post",
			slog.String("error", appendErr.Error()),
			slog.String("user_name", identity.Name),
		)
		s.metrics.RecordPostRejected(model.ErrCodePersistenceFailed)
		return nil, model.NewPersistenceFailedError()
	}

	s.metrics.RecordPostCreated()
	slog.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.String("user_name", post.Author),
	)
	return post, nil
}

// GetTimeline は新しい順に最大Limit件の投稿を表示用に整形して返す。認証は不要。
func (s *Service) GetTimeline(ctx context.Context) ([]model.DisplayPost, error) {
	posts, err := s.posts.ListRecent(ctx, s.limit)
	if err != nil {
		slog.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, model.NewStorageError()
	}

	result := make([]model.DisplayPost, 0, len(posts))
	for _, p := range posts {
		result = append(result, s.ToDisplay(p))
	}
	return result, nil
}

// ToDisplay は投稿を表示用の形式に変換する。
func (s *Service) ToDisplay(p *model.Post) model.DisplayPost {
	return model.DisplayPost{
		ID:        p.ID,
		Author:    p.Author,
		Content:   p.Content,
		Date:      FormatDate(p.CreatedAt, s.location),
		Time:      FormatTime(p.CreatedAt, s.location),
		CreatedAt: p.CreatedAt,
	}
}

// ValidateContent は投稿内容をトリムし、長さの制約を検証する。
// 長さはルーン数で数える。
func ValidateContent(raw string) (string, *model.APIError) {
	content := model.TrimText(raw)
	if content == "" {
		return "", model.NewEmptyContentError()
	}
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return "", model.NewContentTooLongError()
	}
	return content, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordPostCreated()         {}
func (nopMetrics) RecordPostRejected(string) {}
func (nopMetrics) RecordLogin()              {}
func (nopMetrics) RecordLogout()             {}
