// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
	"unicode"
)

// 投稿内容と表示名の長さ制約（トリム後のルーン数）。
const (
	MaxContentLength = 50
	MaxNameLength    = 50
)

// Post はタイムラインに投稿された1件のつぶやきを表す。
// 作成後は更新・削除されない。
type Post struct {
	ID        int64
	Author    string
	Content   string
	CreatedAt time.Time
}

// DisplayPost はタイムライン表示用に整形された投稿を表す。
// Date、Timeは表示タイムゾーンでローカライズ済みの文字列。
type DisplayPost struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// TrimText は前後の空白文字とBOM(U+FEFF)を取り除く。
// 投稿内容と表示名の長さ検証はこの結果に対して行う。
func TrimText(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
