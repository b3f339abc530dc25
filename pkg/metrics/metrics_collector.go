package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 指标收集器
type Collector struct {
	// 平台接口指标
	platformCallsTotal   *prometheus.CounterVec
	platformCallDuration *prometheus.HistogramVec

	// 令牌缓存指标
	tokenCacheHitsTotal        *prometheus.CounterVec
	tokenCacheMissesTotal      *prometheus.CounterVec
	tokenCacheWriteErrorsTotal prometheus.Counter
}

// Default 全局指标收集器
var Default = newCollector()

func newCollector() *Collector {
	return &Collector{
		platformCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wechat_platform_calls_total",
				Help: "Total number of WeChat platform API calls",
			},
			[]string{"endpoint", "outcome"},
		),

		platformCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wechat_platform_call_duration_seconds",
				Help:    "WeChat platform API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		tokenCacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wechat_token_cache_hits_total",
				Help: "Token cache hits by token name",
			},
			[]string{"name"},
		),

		tokenCacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wechat_token_cache_misses_total",
				Help: "Token cache misses by token name",
			},
			[]string{"name"},
		),

		tokenCacheWriteErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wechat_token_cache_write_errors_total",
				Help: "Failed token cache writes (token still served to caller)",
			},
		),
	}
}

// ObservePlatformCall 记录一次平台接口调用
func (c *Collector) ObservePlatformCall(endpoint, outcome string, duration time.Duration) {
	c.platformCallsTotal.WithLabelValues(endpoint, outcome).Inc()
	c.platformCallDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// TokenCacheHit 记录令牌缓存命中
func (c *Collector) TokenCacheHit(name string) {
	c.tokenCacheHitsTotal.WithLabelValues(name).Inc()
}

// TokenCacheMiss 记录令牌缓存未命中
func (c *Collector) TokenCacheMiss(name string) {
	c.tokenCacheMissesTotal.WithLabelValues(name).Inc()
}

// TokenCacheWriteError 记录令牌缓存写入失败
func (c *Collector) TokenCacheWriteError() {
	c.tokenCacheWriteErrorsTotal.Inc()
}
