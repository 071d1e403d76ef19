package model

import "time"

// Session は表示名によるログインセッションを表す。
// サーバー側にセッションテーブルは持たず、クレデンシャル自体が名前と有効期限を保持する。
type Session struct {
	Token       string
	DisplayName string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Valid は指定時刻においてセッションが有効かどうかを返す。
func (s *Session) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// Identity はクレデンシャルを解決した結果を表す。
// LoggedInがfalseの場合、Nameは常に空文字列。
type Identity struct {
	LoggedIn bool
	Name     string
}
