// kdcpay-gateway/pkg/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// "service" label so one query can compare the HTTP and gRPC listeners
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kdcpay",
			Name:      "requests_total",
			Help:      "Total HTTP requests per service",
		},
		[]string{"service", "status", "method"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kdcpay",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency per service",
			Buckets: []float64{
				0.01, 0.02, 0.03, 0.05, 0.08, 0.12,
				0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5,
			},
		},
		[]string{"service", "status"},
	)

	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kdcpay",
			Name:      "checkouts_total",
			Help:      "Checkout forms built, by result",
		},
		[]string{"result"},
	)

	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kdcpay",
			Name:      "callbacks_total",
			Help:      "Gateway callbacks handled, by action and resolved outcome",
		},
		[]string{"action", "outcome"},
	)

	ChecksumMismatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kdcpay",
			Name:      "checksum_mismatch_total",
			Help:      "Callbacks whose checksum did not verify",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		CheckoutsTotal,
		CallbacksTotal,
		ChecksumMismatchTotal,
	)
}

func IncRequest(service, status, method string) {
	RequestsTotal.WithLabelValues(service, status, method).Inc()
}

func ObserveDuration(service, status string, seconds float64) {
	RequestDuration.WithLabelValues(service, status).Observe(seconds)
}

func IncCheckout(result string) {
	CheckoutsTotal.WithLabelValues(result).Inc()
}

func IncCallback(action, outcome string) {
	CallbacksTotal.WithLabelValues(action, outcome).Inc()
}

func IncChecksumMismatch(action string) {
	ChecksumMismatchTotal.WithLabelValues(action).Inc()
}
