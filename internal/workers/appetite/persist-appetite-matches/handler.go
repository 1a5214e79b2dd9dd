// internal/workers/appetite/persist-appetite-matches/handler.go
package persistappetitematches

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appetite-workers/internal/common/errors"
	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/common/metrics"
	"appetite-workers/internal/common/observability"
	"appetite-workers/internal/common/validation"
	"appetite-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "persist-appetite-matches"
)

// MatchStore writes top matches for a run.
type MatchStore interface {
	SaveTopMatches(ctx context.Context, runID, quoteID string, matches []models.MatchResult) (int, error)
}

type Handler struct {
	config     *Config
	store      MatchStore
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, store MatchStore, obs *observability.Observability, log logger.Logger) *Handler {
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		obs:        obs,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	start := time.Now()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput([]byte(job.Variables))
	if err == nil {
		var output *Output
		output, err = h.execute(ctx, input)
		if err == nil {
			h.completeJob(ctx, client, job, output)
			timer.Done("")
			h.obs.RecordJobProcessed(ctx, TaskType, "completed")
			h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
			return
		}
	}

	h.errHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
}

func ParseInput(variables []byte) (*Input, error) {
	result, err := validation.PersistJobValidator.ValidateJSON(variables)
	if err != nil {
		return nil, errors.NewInvalidMatchInputError(fmt.Sprintf("parse input: %v", err))
	}
	if !result.Valid {
		return nil, errors.NewInvalidMatchInputError(result.Error())
	}

	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		return nil, errors.NewInvalidMatchInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	count, err := h.store.SaveTopMatches(ctx, input.RunID, input.QuoteID, input.TopMatches)
	if err != nil {
		return nil, errors.NewMatchPersistFailedError(input.QuoteID, err).
			WithMetadata("runId", input.RunID)
	}

	h.logger.Info("appetite matches persisted", map[string]interface{}{
		"runId":          input.RunID,
		"quoteId":        input.QuoteID,
		"persistedCount": count,
	})

	return &Output{
		PersistedCount: count,
		PersistedAt:    h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
