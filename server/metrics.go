package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 请求级指标。缓存命中率与排序耗时是这个服务最需要盯的两条线。
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchkit",
		Name:      "recommend_requests_total",
		Help:      "Recommendation requests by outcome.",
	}, []string{"status"})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchkit",
		Name:      "recommend_cache_hits_total",
		Help:      "First-page requests served from the result cache.",
	})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matchkit",
		Name:      "recommend_duration_seconds",
		Help:      "End-to-end recommendation latency.",
		Buckets:   prometheus.DefBuckets,
	})
)
