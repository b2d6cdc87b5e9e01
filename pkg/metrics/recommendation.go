package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation HTTP handlers
	RecommendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommendation_request_latency_seconds",
		Help:    "Latency of recommendation handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Total number of recommendation requests served
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_requests_total",
		Help: "Total number of recommendation requests by endpoint",
	}, []string{"endpoint"})

	// Failed upstream calls by collaborator service
	UpstreamErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_upstream_errors_total",
		Help: "Failed calls to external services by service name",
	}, []string{"service"})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		UpstreamErrors,
	)
}
