package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidName       = "INVALID_NAME"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeEmptyContent      = "EMPTY_CONTENT"
	ErrCodeContentTooLong    = "CONTENT_TOO_LONG"
	ErrCodePersistenceFailed = "PERSISTENCE_FAILED"
	ErrCodeStorageError      = "STORAGE_ERROR"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// HasCode はerrがcodeを持つAPIErrorかどうかを判定する。
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// NewInvalidNameError は表示名が不正な場合のエラーを生成する。
func NewInvalidNameError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Message:  reason,
		Category: "validation",
		Action:   fmt.Sprintf("1〜%d文字の名前を入力してください。", MaxNameLength),
	}
}

// NewUnauthorizedError は未ログイン状態で投稿しようとした場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "ログインが必要です",
		Category: "auth",
		Action:   "名前を入力してログインしてください。",
	}
}

// NewEmptyContentError は投稿内容が空の場合のエラーを生成する。
func NewEmptyContentError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyContent,
		Message:  "投稿内容を入力してください",
		Category: "validation",
		Action:   "空白以外の文字を入力してください。",
	}
}

// NewContentTooLongError は投稿内容が上限を超えた場合のエラーを生成する。
func NewContentTooLongError() *APIError {
	return &APIError{
		Code:     ErrCodeContentTooLong,
		Message:  fmt.Sprintf("投稿は%d文字以内で入力してください", MaxContentLength),
		Category: "validation",
		Action:   "投稿内容を短くしてください。",
	}
}

// NewPersistenceFailedError は投稿の保存に失敗した場合のエラーを生成する。
func NewPersistenceFailedError() *APIError {
	return &APIError{
		Code:     ErrCodePersistenceFailed,
		Message:  "投稿の保存に失敗しました",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewStorageError はタイムラインの取得に失敗した場合のエラーを生成する。
func NewStorageError() *APIError {
	return &APIError{
		Code:     ErrCodeStorageError,
		Message:  "投稿の取得に失敗しました",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
