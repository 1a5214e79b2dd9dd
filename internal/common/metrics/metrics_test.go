// internal/common/metrics/metrics_test.go
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJobTimer(t *testing.T) {
	const taskType = "metrics-test-task"

	completedBefore := testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(taskType))
	failedBefore := testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(taskType, "INVALID_MATCH_INPUT"))

	timer := StartJob(taskType)
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(taskType)))
	timer.Done("")

	StartJob(taskType).Done("INVALID_MATCH_INPUT")

	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(taskType)))
	assert.Equal(t, completedBefore+1, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(taskType)))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(taskType, "INVALID_MATCH_INPUT")))
}
