// Package auth は表示名によるセッションの発行・解決・破棄を提供する。
// 名前は自己申告であり、クレデンシャルの署名は改ざん検知のためのものである。
package auth

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/hitokoto/internal/model"
)

// DefaultSessionTTL はセッションの既定の有効期間（7日）。
const DefaultSessionTTL = 7 * 24 * time.Hour

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	Secret     []byte        // クレデンシャル署名用の鍵
	SessionTTL time.Duration // セッション有効期間。0の場合はDefaultSessionTTL
}

// Service はセッションストアとして振る舞う。
// サーバー側のセッションテーブルは持たず、ログアウト済みトークンのみを保持する。
type Service struct {
	codec   *credentialCodec
	ttl     time.Duration
	revoked *RevocationList
	now     func() time.Time
}

// NewService はServiceを生成する。
func NewService(config ServiceConfig) *Service {
	return NewServiceWithClock(config, time.Now)
}

// NewServiceWithClock は時刻取得関数を指定してServiceを生成する。
func NewServiceWithClock(config ServiceConfig, now func() time.Time) *Service {
	ttl := config.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		codec:   &credentialCodec{secret: config.Secret},
		ttl:     ttl,
		revoked: NewRevocationList(),
		now:     now,
	}
}

// CreateSession は表示名のセッションを発行し、セッションとクレデンシャルを返す。
// 名前はトリムして保存する。空白のみ、または上限を超える名前はInvalidNameエラーとなる。
func (s *Service) CreateSession(name string) (*model.Session, string, error) {
	trimmed := model.TrimText(name)
	if trimmed == "" {
		return nil, "", model.NewInvalidNameError("名前を入力してください")
	}
	if utf8.RuneCountInString(trimmed) > model.MaxNameLength {
		return nil, "", model.NewInvalidNameError(fmt.Sprintf("名前は%d文字以内で入力してください", model.MaxNameLength))
	}

	// JWTのexpは秒精度のため、セッションの有効期限も秒に揃える
	now := s.now()
	session := &model.Session{
		Token:       uuid.New().String(),
		DisplayName: trimmed,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl).Truncate(time.Second),
	}

	credential, err := s.codec.encode(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue credential: %w", err)
	}

	return session, credential, nil
}

// ResolveSession はクレデンシャルからログイン状態を解決する。
// クレデンシャルが無い・不正・期限切れ・ログアウト済みの場合はLoggedIn=falseを返す。
func (s *Service) ResolveSession(credential string) model.Identity {
	if credential == "" {
		return model.Identity{}
	}

	session, err := s.lookup(credential)
	if err != nil {
		slog.Debug("session rejected", slog.String("reason", err.Error()))
		return model.Identity{}
	}
	return model.Identity{LoggedIn: true, Name: session.DisplayName}
}

// lookup はクレデンシャルを検証し、現在有効なセッションを返す。
// 失敗理由はErrCredentialInvalid、ErrCredentialExpired、ErrCredentialRevokedのいずれか。
func (s *Service) lookup(credential string) (*model.Session, error) {
	session, err := s.codec.decode(credential)
	if err != nil {
		return nil, err
	}
	if !session.Valid(s.now()) {
		return nil, ErrCredentialExpired
	}
	if s.revoked.IsRevoked(session.Token) {
		return nil, ErrCredentialRevoked
	}

	session.DisplayName = model.TrimText(session.DisplayName)
	if session.DisplayName == "" {
		return nil, ErrCredentialInvalid
	}
	return session, nil
}

// DestroySession はクレデンシャルを失効させる。
// すでに無効なクレデンシャルや空のクレデンシャルに対しては何もしない（冪等）。
func (s *Service) DestroySession(credential string) {
	session, err := s.lookup(credential)
	if err != nil {
		return
	}
	s.revoked.Revoke(session.Token, session.ExpiresAt)
	slog.Info("session destroyed", slog.String("user_name", session.DisplayName))
}

// SessionTTL はセッションの有効期間を返す。
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// PruneRevocations は期限切れとなったログアウト記録を削除し、削除件数を返す。
func (s *Service) PruneRevocations() int {
	return s.revoked.Prune(s.now())
}
