// Package metrics exposes prometheus instruments for the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded by Analyses.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

var (
	// Analyses counts finished analyses by outcome.
	Analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricecorr",
		Name:      "analyses_total",
		Help:      "Number of finished analyses by outcome.",
	}, []string{"outcome"})

	// LoadDuration observes how long one input file takes to load.
	LoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pricecorr",
		Name:      "load_duration_seconds",
		Help:      "Time spent staging and parsing one input file.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})

	// Correlation observes reported correlation percentages.
	Correlation = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pricecorr",
		Name:      "correlation_percent",
		Help:      "Distribution of reported correlation percentages.",
		Buckets:   []float64{-70, -30, 30, 70, 100},
	})
)

// ObserveLoad records a load duration for format.
func ObserveLoad(format string, since time.Time) {
	LoadDuration.WithLabelValues(format).Observe(time.Since(since).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
