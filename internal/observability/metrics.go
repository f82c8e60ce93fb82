package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec

	callAttemptsTotal *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			runsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "arena_runs_total",
					Help: "Total arena runs by terminal status.",
				},
				[]string{"status"},
			),
			runDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "arena_run_duration_seconds",
					Help:    "End-to-end arena run duration.",
					Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
				},
			),
			stageDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "arena_stage_duration_seconds",
					Help:    "Per-stage duration by agent role.",
					Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
				},
				[]string{"role"},
			),
			stageFailures: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "arena_stage_failures_total",
					Help: "Stage failures by agent role.",
				},
				[]string{"role"},
			),
			callAttemptsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "llm_call_attempts_total",
					Help: "LLM call attempts by model and outcome.",
				},
				[]string{"model", "outcome"},
			),
		}

		prometheus.MustRegister(
			m.runsTotal,
			m.runDuration,
			m.stageDuration,
			m.stageFailures,
			m.callAttemptsTotal,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered registers all collectors exactly once. Safe to call
// from every constructor that records metrics.
func EnsureRegistered() {
	getMetrics()
}

// RecordRun records a completed arena run with its terminal status.
func RecordRun(status string, duration time.Duration) {
	m := getMetrics()
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// ObserveStage records one agent stage duration.
func ObserveStage(role string, duration time.Duration) {
	getMetrics().stageDuration.WithLabelValues(role).Observe(duration.Seconds())
}

// RecordStageFailure counts a stage that ended a run.
func RecordStageFailure(role string) {
	getMetrics().stageFailures.WithLabelValues(role).Inc()
}

// RecordCallAttempt counts one LLM call attempt.
func RecordCallAttempt(model string, success bool) {
	outcome := "error"
	if success {
		outcome = "success"
	}
	getMetrics().callAttemptsTotal.WithLabelValues(model, outcome).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}
