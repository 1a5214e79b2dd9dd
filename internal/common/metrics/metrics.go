// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
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

	MatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appetite_match_runs_total",
			Help: "Total number of appetite match runs by outcome",
		},
		[]string{"source", "status"},
	)

	MatchCandidatesEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appetite_match_candidates_evaluated_total",
			Help: "Total number of underwriter appetites scored",
		},
	)

	MatchConfidenceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "appetite_match_confidence_score",
			Help:    "Distribution of non-zero confidence scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	MatchExclusionsHit = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appetite_match_exclusions_hit_total",
			Help: "Total number of candidates dropped by a zero score",
		},
	)

	AppetiteCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appetite_cache_lookups_total",
			Help: "Appetite cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// JobTimer tracks one in-flight job for a task type.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active and starts its duration timer.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Done records the job outcome. An empty errorCode counts as completed.
func (t *JobTimer) Done(errorCode string) {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}
