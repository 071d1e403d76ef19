// Package app はサブコマンドの解析と依存関係のワイヤリングを行い、アプリケーションを起動する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/hitokoto/internal/auth"
	"github.com/hitoshi/hitokoto/internal/config"
	"github.com/hitoshi/hitokoto/internal/database"
	"github.com/hitoshi/hitokoto/internal/handler"
	"github.com/hitoshi/hitokoto/internal/logger"
	"github.com/hitoshi/hitokoto/internal/metrics"
	"github.com/hitoshi/hitokoto/internal/repository"
	"github.com/hitoshi/hitokoto/internal/timeline"
	"github.com/hitoshi/hitokoto/internal/worker/cleanup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// redisPingTimeout は起動時のRedis疎通確認の制限時間。
const redisPingTimeout = 5 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化する
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetupDefault(w, level)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// openPostStore は設定されたバックエンドの投稿ストアを開く。
// 返されるclose関数で接続を解放する。
func openPostStore(ctx context.Context, cfg *config.Config) (repository.PostRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("database connection established",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		return repository.NewPostgresPostRepo(db), func() { db.Close() }, nil

	case config.StorageRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("redis connection established",
			slog.String("redis_url", maskDatabaseURL(cfg.RedisURL)),
		)
		return repository.NewRedisPostRepo(client, cfg.RedisKeyPrefix), func() { client.Close() }, nil

	default:
		return repository.NewMemoryPostRepo(), func() {}, nil
	}
}

// newRegistry はアプリケーション用のPrometheusレジストリを生成する。
// Goランタイムとプロセスのメトリクスも登録する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newHandler は全依存関係をワイヤリングしたHTTPハンドラーを返す。
func newHandler(cfg *config.Config, posts repository.PostRepository, authService *auth.Service, reg *prometheus.Registry) http.Handler {
	collector := metrics.NewCollector(reg)

	svc := timeline.NewService(posts, authService, collector, timeline.Config{
		Limit:    cfg.TimelineLimit,
		Location: cfg.DisplayLocation,
	})

	return handler.NewRouter(&handler.RouterDeps{
		SessionResolver:   authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		HTTPMetrics:       collector,
		Logger:            slog.Default(),

		AuthService: svc,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		PostService: svc,

		HealthChecker:  posts,
		MetricsHandler: metrics.Handler(reg),
	})
}

// runServe はAPIサーバーモードで起動する。
// 投稿ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. 投稿ストア
	posts, closeStore, err := openPostStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open post store: %w", err)
	}
	defer closeStore()

	// 2. セッションストア
	authService := auth.NewService(auth.ServiceConfig{
		Secret:     []byte(cfg.SessionSecret),
		SessionTTL: cfg.SessionTTL(),
	})

	// 3. ルーター
	router := newHandler(cfg, posts, authService, newRegistry())

	// 4. 失効リストのクリーンアップをバックグラウンドで実行
	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()
	cleanupJob := cleanup.NewCleanupJob(authService, slog.Default())
	go cleanupJob.Start(jobCtx, cfg.RevocationCleanupInterval)

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.MigrateUp(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL は接続URLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
