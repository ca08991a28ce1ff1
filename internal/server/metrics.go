package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionsTotal counts finished resolutions by token kind and outcome.
	// Labels: kind (lookup, search), outcome (navigate, display, not_found, failed)
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wikimark",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Total finished resolutions by token kind and outcome",
	}, []string{"kind", "outcome"})

	// resolutionSeconds measures resolution latency from query submission to
	// the terminal state, dominated by the query service round trip.
	// Labels: kind
	resolutionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wikimark",
		Subsystem: "resolver",
		Name:      "resolution_duration_seconds",
		Help:      "Resolution latency by token kind",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})

	// httpRequestsTotal counts served requests by HTTP status code.
	// Labels: code
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wikimark",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by status code",
	}, []string{"code"})
)

// recordResolution records one finished resolution.
func recordResolution(kind, outcome string, duration time.Duration) {
	resolutionsTotal.WithLabelValues(kind, outcome).Inc()
	resolutionSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}
