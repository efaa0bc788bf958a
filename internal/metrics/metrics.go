package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "finrl_desk",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finrl_desk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finrl_desk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	analysisSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finrl_desk",
			Subsystem: "analysis",
			Name:      "submissions_total",
			Help:      "Total number of scoring attempts by outcome.",
		},
		[]string{"outcome"},
	)

	scoringDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "finrl_desk",
			Subsystem: "analysis",
			Name:      "scoring_duration_seconds",
			Help:      "Duration of scoring calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
	)

	authDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finrl_desk",
			Subsystem: "auth",
			Name:      "denials_total",
			Help:      "Total number of rejected requests at the access gate.",
		},
		[]string{"reason"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		analysisSubmissions,
		scoringDuration,
		authDenials,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted marks an in-flight request and returns the func that ends it.
func RequestStarted() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// ObserveRequest records one finished HTTP request. path should be the
// route template, not the raw URL.
func ObserveRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveScoring records one scoring call.
func ObserveScoring(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	analysisSubmissions.WithLabelValues(outcome).Inc()
	scoringDuration.Observe(duration.Seconds())
}

// AuthDenied counts a request rejected by the access gate.
func AuthDenied(reason string) {
	authDenials.WithLabelValues(reason).Inc()
}
