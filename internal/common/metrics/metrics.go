// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation kinds used as the "kind" label.
const (
	KindVehicle   = "vehicle"
	KindInsurance = "insurance"
	KindValuation = "valuation"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_candidates_scored_total",
			Help: "Candidates passed through the scoring pipeline",
		},
		[]string{"kind"},
	)

	ResultsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_results_returned",
			Help:    "Recommendations returned per ranking job",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"kind"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Ranking and catalog cache lookups by result",
		},
		[]string{"kind", "result"},
	)
)

// ObserveJob records the outcome of one job. An empty errorCode means success.
func ObserveJob(taskType string, started time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

func ObserveRanking(kind string, scored, returned int) {
	CandidatesScored.WithLabelValues(kind).Add(float64(scored))
	ResultsReturned.WithLabelValues(kind).Observe(float64(returned))
}

func ObserveCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(kind, result).Inc()
}
