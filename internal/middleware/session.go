// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/hitokoto/internal/model"
)

// SessionCookieName はセッションクレデンシャルを保持するCookieの名前。
const SessionCookieName = "session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userNameContextKey はリクエストコンテキストに表示名を格納するためのキー。
var userNameContextKey = contextKey("user_name")

// SessionResolver はクレデンシャルからログイン状態を解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionResolver interface {
	ResolveSession(credential string) model.Identity
}

// CredentialFromRequest はリクエストのCookieからクレデンシャルを取り出す。
// Cookieが無い場合は空文字列を返す。
func CredentialFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// NewSessionMiddleware はCookieのクレデンシャルを解決し、
// ログイン中であれば表示名をリクエストコンテキストに注入するミドルウェアを返す。
// 未ログインのリクエストも拒否せずに通す。認可は各ハンドラーが行う。
func NewSessionMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := CredentialFromRequest(r)
			if credential == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity := resolver.ResolveSession(credential)
			if !identity.LoggedIn {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userNameContextKey, identity.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserNameFromContext はリクエストコンテキストから表示名を取得する。
// セッションミドルウェアでログイン中と判定されたリクエストでのみ有効。
func UserNameFromContext(ctx context.Context) (string, error) {
	name, ok := ctx.Value(userNameContextKey).(string)
	if !ok || name == "" {
		return "", fmt.Errorf("user name not found in context")
	}
	return name, nil
}

// ContextWithUserName はコンテキストに表示名を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userNameContextKey, name)
}
