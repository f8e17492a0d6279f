package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ranking Prometheus metrics.
var (
	RankingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiredex",
			Name:      "ranking_requests_total",
			Help:      "Total number of ranking requests",
		},
		[]string{"provider", "model", "status"},
	)

	RankingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tiredex",
			Name:      "ranking_request_duration_seconds",
			Help:      "Ranking request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider", "model"},
	)

	RankingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiredex",
			Name:      "ranking_tokens_total",
			Help:      "Total ranking tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	RankingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiredex",
			Name:      "ranking_errors_total",
			Help:      "Total ranking errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	RankingFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiredex",
			Name:      "ranking_fallback_total",
			Help:      "Searches answered with deterministic ordering instead of ranked output",
		},
		[]string{"reason"}, // "ranking_failed" / "empty_filter"
	)

	RankingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiredex",
			Name:      "ranking_cache_total",
			Help:      "Ranking cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var rankingMetricsRegistered bool

// RegisterRankingMetrics registers Prometheus ranking metrics. Must be called once from main.
func RegisterRankingMetrics() {
	if rankingMetricsRegistered {
		return
	}
	prometheus.MustRegister(RankingRequestsTotal)
	prometheus.MustRegister(RankingRequestDuration)
	prometheus.MustRegister(RankingTokensTotal)
	prometheus.MustRegister(RankingErrorsTotal)
	prometheus.MustRegister(RankingFallbackTotal)
	prometheus.MustRegister(RankingCacheTotal)
	rankingMetricsRegistered = true
}
