// Package metrics declares the Prometheus collectors exposed by
// cmd/caseflowd.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CasesExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseflow",
		Name:      "cases_executed_total",
		Help:      "Total case runs, labeled by outcome.",
	}, []string{"outcome"})

	StepPassRatio = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "caseflow",
		Name:      "case_step_pass_ratio",
		Help:      "Distribution of per-case step pass ratios (0-100).",
		Buckets:   []float64{0, 25, 50, 75, 90, 99, 100},
	})

	WorkerQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "caseflow",
		Name:      "worker_queue_depth",
		Help:      "Current number of jobs queued in the async worker pool.",
	})

	SchedulerDispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseflow",
		Name:      "scheduler_dispatches_total",
		Help:      "Total scheduled task dispatches, labeled by scheduler kind.",
	}, []string{"scheduler_kind"})

	SchedulerScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "caseflow",
		Name:      "scheduler_scan_duration_seconds",
		Help:      "Duration of one scheduler due-task scan.",
		Buckets:   prometheus.DefBuckets,
	})
)

// MustRegister registers every collector on reg, panicking on a
// duplicate-registration bug caught at startup rather than at scrape
// time.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		CasesExecuted,
		StepPassRatio,
		WorkerQueueDepth,
		SchedulerDispatches,
		SchedulerScanDuration,
	)
}
