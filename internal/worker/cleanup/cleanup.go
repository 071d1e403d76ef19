// Package cleanup はログアウト済みクレデンシャルの失効リストを定期的に掃除するジョブを提供する。
// 有効期限を過ぎたクレデンシャルは署名検証の段階で拒否されるため、
// 失効リストから取り除いても結果は変わらない。
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// RevocationPruner は期限切れの失効エントリを削除するインターフェース。
// auth.Serviceが実装する。
type RevocationPruner interface {
	PruneRevocations() int
}

// CleanupJob は失効リストの定期掃除ジョブ。
type CleanupJob struct {
	pruner RevocationPruner
	logger *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(pruner RevocationPruner, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		pruner: pruner,
		logger: logger,
	}
}

// Run は期限切れの失効エントリを1回削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	removed := j.pruner.PruneRevocations()

	j.logger.Info("失効リストのクリーンアップが完了しました",
		slog.Int("removed_count", removed),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return nil
}

// Start は指定間隔のティッカーでRunを繰り返す。
// コンテキストがキャンセルされるまで実行を継続する。
// intervalが0以下の場合は起動せずにエラーを記録して戻る。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		j.logger.Error("失効リストのクリーンアップ間隔が不正です",
			slog.Duration("interval", interval),
		)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("失効リストのクリーンアップを開始しました",
		slog.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("失効リストのクリーンアップを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("失効リストのクリーンアップに失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
