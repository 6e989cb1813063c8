package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	StageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockvision",
			Subsystem: "forecast",
			Name:      "stage_duration_seconds",
			Help:      "Duration of forecast pipeline stages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "model"},
	)

	ForecastRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockvision",
			Subsystem: "forecast",
			Name:      "runs_total",
			Help:      "Completed forecast runs by model",
		},
		[]string{"model"},
	)

	ForecastErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockvision",
			Subsystem: "forecast",
			Name:      "errors_total",
			Help:      "Failed forecast runs by error kind",
		},
		[]string{"kind"},
	)

	ModelR2 = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "stockvision",
			Subsystem: "forecast",
			Name:      "model_r2",
			Help:      "Hold-out R2 of the latest fit per symbol and model",
		},
		[]string{"symbol", "model"},
	)

	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockvision",
			Subsystem: "collector",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of bar fetches by source",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockvision",
			Subsystem: "collector",
			Name:      "cache_requests_total",
			Help:      "Bar cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockvision",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
)

// Register adds all collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(StageLatency, ForecastRuns, ForecastErrors, ModelR2, FetchLatency, CacheRequests, HTTPRequests)
	})
}

// ObserveStage records the time elapsed since start for a pipeline stage.
func ObserveStage(stage, model string, start time.Time) {
	StageLatency.WithLabelValues(stage, model).Observe(time.Since(start).Seconds())
}
