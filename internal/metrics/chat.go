package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chat and retrieval Prometheus metrics.
var (
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faro",
			Name:      "chat_requests_total",
			Help:      "Total number of chat requests by resolved intent",
		},
		[]string{"intent"},
	)

	SearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faro",
			Name:      "searches_total",
			Help:      "Total number of product searches",
		},
	)

	SearchesEmptyTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faro",
			Name:      "searches_empty_total",
			Help:      "Total number of product searches returning no results",
		},
	)

	IndexRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faro",
			Name:      "index_rebuilds_total",
			Help:      "Total number of catalog index rebuilds",
		},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faro",
			Name:      "generation_requests_total",
			Help:      "Total number of language-generation requests",
		},
		[]string{"status"}, // "ok" / "error"
	)

	GenerationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faro",
			Name:      "generation_fallbacks_total",
			Help:      "Total number of responses served from the local fallback sentence",
		},
	)
)

var chatMetricsRegistered bool

// RegisterChatMetrics registers Prometheus chat metrics. Must be called once from main.
func RegisterChatMetrics() {
	if chatMetricsRegistered {
		return
	}
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchesEmptyTotal)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationFallbacksTotal)
	chatMetricsRegistered = true
}
