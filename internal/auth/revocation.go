package auth

import (
	"sync"
	"time"
)

// RevocationList はログアウト済みセッショントークンを元の有効期限まで保持する。
// 期限を過ぎたトークンはクレデンシャル自体が無効になるため、Pruneで削除してよい。
type RevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewRevocationList は空のRevocationListを生成する。
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Revoke はトークンを失効済みとして記録する。
func (l *RevocationList) Revoke(token string, expiresAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[token] = expiresAt
}

// IsRevoked はトークンが失効済みかどうかを返す。
func (l *RevocationList) IsRevoked(token string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[token]
	return ok
}

// Prune は有効期限がnow以前のエントリを削除し、削除件数を返す。
func (l *RevocationList) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for token, expiresAt := range l.entries {
		if !now.Before(expiresAt) {
			delete(l.entries, token)
			removed++
		}
	}
	return removed
}

// Len は保持しているエントリ数を返す。
func (l *RevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
