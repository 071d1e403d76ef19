// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// タイムラインサービスとHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordPostCreated()
	RecordPostRejected(reason string)
	RecordLogin()
	RecordLogout()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	postsCreated   prometheus.Counter
	postsRejected  *prometheus.CounterVec
	logins         prometheus.Counter
	logouts        prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hitokoto_posts_created_total",
			Help: "作成された投稿の合計数",
		}),
		postsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hitokoto_posts_rejected_total",
			Help: "拒否された投稿の理由別の合計数",
		}, []string{"reason"}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hitokoto_logins_total",
			Help: "ログインの合計数",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hitokoto_logouts_total",
			Help: "ログアウトの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hitokoto_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hitokoto_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.postsCreated,
		c.postsRejected,
		c.logins,
		c.logouts,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordPostCreated は投稿の作成を記録する。
func (c *Collector) RecordPostCreated() {
	c.postsCreated.Inc()
}

// RecordPostRejected は投稿の拒否を理由（エラーコード）別に記録する。
func (c *Collector) RecordPostRejected(reason string) {
	c.postsRejected.WithLabelValues(reason).Inc()
}

// RecordLogin はログインを記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordLogout はログアウトを記録する。
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
