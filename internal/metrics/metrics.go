package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SentinelsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_created_total",
			Help: "Sentinels created via the API",
		},
	)

	DispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_dispatches_total",
			Help: "Dispatch attempts by outcome",
		},
		[]string{"outcome"}, // success|failed
	)

	DispatchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_dispatch_failures_total",
			Help: "Failed dispatch attempts by failure class",
		},
		[]string{"class"}, // timeout|transport_error|non_2xx|bad_payload
	)

	SweepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_sweeps_total",
			Help: "Sweep executions by result",
		},
		[]string{"result"}, // ok|error
	)

	SweepDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_sweep_duration_seconds",
			Help:    "Wall time of one full sweep",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		SentinelsCreatedTotal,
		DispatchesTotal,
		DispatchFailuresTotal,
		SweepsTotal,
		SweepDurationSeconds,
	)
}
