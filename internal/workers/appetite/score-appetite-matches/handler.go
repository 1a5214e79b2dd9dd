// internal/workers/appetite/score-appetite-matches/handler.go
package scoreappetitematches

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
	"appetite-workers/internal/services"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-appetite-matches"
)

// Matcher runs one match for a client profile.
type Matcher interface {
	Run(ctx context.Context, req services.MatchRequest) (*services.MatchResponse, error)
}

type Handler struct {
	config     *Config
	matcher    Matcher
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, matcher Matcher, obs *observability.Observability, log logger.Logger) *Handler {
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		matcher:    matcher,
		obs:        obs,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
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

// ParseInput validates the job variables against the task schema and decodes them.
func ParseInput(variables []byte) (*Input, error) {
	result, err := validation.ScoreJobValidator.ValidateJSON(variables)
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
	resp, err := h.matcher.Run(ctx, services.MatchRequest{
		QuoteID:              input.QuoteID,
		ClientProfile:        input.ClientProfile,
		UnderwriterAppetites: input.UnderwriterAppetites,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("appetite matches scored", map[string]interface{}{
		"quoteId":       input.QuoteID,
		"runId":         resp.RunID,
		"topMatches":    len(resp.TopMatches),
		"nearestMisses": len(resp.NearestMisses),
	})

	return &Output{
		RunID:          resp.RunID,
		TopMatches:     resp.TopMatches,
		NearestMisses:  resp.NearestMisses,
		TotalEvaluated: resp.TotalEvaluated,
		ExcludedCount:  resp.ExcludedCount,
		MatchedAt:      resp.MatchedAt.Format(time.RFC3339),
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
