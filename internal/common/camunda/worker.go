// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"appetite-workers/internal/common/config"
	"appetite-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandlerFunc completes, fails or throws the job itself.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// JobWorkerBuilder is the part of zbc.Client needed to open workers.
type JobWorkerBuilder interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

var _ JobWorkerBuilder = zbc.Client(nil)

type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// StartWorker opens a job worker for taskType. It returns nil when the worker is disabled.
func StartWorker(client JobWorkerBuilder, taskType string, wcfg config.WorkerConfig, handler JobHandlerFunc, log logger.Logger) *Worker {
	log = log.With(map[string]interface{}{"taskType": taskType})
	if !wcfg.Enabled {
		log.Info("worker disabled", nil)
		return nil
	}

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(maxJobsActive(wcfg))
	if wcfg.Timeout > 0 {
		step = step.Timeout(time.Duration(wcfg.Timeout) * time.Millisecond)
	}
	jobWorker := step.Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": maxJobsActive(wcfg),
		"timeout_ms":    wcfg.Timeout,
	})

	return &Worker{worker: jobWorker, logger: log, taskType: taskType}
}

const defaultMaxJobsActive = 32

func maxJobsActive(wcfg config.WorkerConfig) int {
	if wcfg.MaxJobsActive <= 0 {
		return defaultMaxJobsActive
	}
	return wcfg.MaxJobsActive
}

func (w *Worker) TaskType() string { return w.taskType }

// Stop closes the worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	if w == nil {
		return
	}
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
