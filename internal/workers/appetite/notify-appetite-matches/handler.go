// internal/workers/appetite/notify-appetite-matches/handler.go
package notifyappetitematches

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-appetite-matches"
)

// Mailer sends the broker summary email.
type Mailer interface {
	SendTextEmail(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

// Publisher publishes match events.
type Publisher interface {
	PublishEvent(ctx context.Context, topicARN, eventType string, payload interface{}) (string, error)
}

type Handler struct {
	config     *Config
	mailer     Mailer
	publisher  Publisher
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	newID      func() string
	now        func() time.Time
}

// NewHandler builds the handler. mailer and publisher may be nil when the
// matching channel is disabled.
func NewHandler(config *Config, mailer Mailer, publisher Publisher, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	if config.EmailEnabled && mailer == nil {
		return nil, fmt.Errorf("email notifications enabled without a mailer")
	}
	if config.EventsEnabled && publisher == nil {
		return nil, fmt.Errorf("event notifications enabled without a publisher")
	}
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	if obs == nil {
		obs = observability.NewNoop()
	}

	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		mailer:     mailer,
		publisher:  publisher,
		obs:        obs,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
		newID:      uuid.NewString,
		now:        time.Now,
	}, nil
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
	result, err := validation.NotifyJobValidator.ValidateJSON(variables)
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
	sentAt := h.now().UTC().Format(time.RFC3339)
	output := &Output{
		NotificationID: h.newID(),
		Status:         StatusDisabled,
		SentAt:         sentAt,
	}

	if h.config.EmailEnabled && input.BrokerEmail != "" {
		id, err := h.mailer.SendTextEmail(ctx, h.config.FromEmail, []string{input.BrokerEmail},
			renderSubject(h.config.SubjectPrefix, input), renderBody(input))
		if err != nil {
			return nil, errors.NewMatchNotificationFailedError("email", err).
				WithMetadata("runId", input.RunID)
		}
		output.EmailMessageID = id
		output.Status = StatusSent
	}

	if h.config.EventsEnabled {
		event := MatchesCompletedEvent{
			EventType:      EventMatchesCompleted,
			NotificationID: output.NotificationID,
			RunID:          input.RunID,
			QuoteID:        input.QuoteID,
			TopMatches:     summarize(input.TopMatches),
			NearestMisses:  summarize(input.NearestMisses),
			OccurredAt:     sentAt,
		}
		id, err := h.publisher.PublishEvent(ctx, h.config.TopicARN, EventMatchesCompleted, event)
		if err != nil {
			return nil, errors.NewMatchNotificationFailedError("event", err).
				WithMetadata("runId", input.RunID)
		}
		output.EventMessageID = id
		output.Status = StatusSent
	}

	h.logger.Info("appetite match notification processed", map[string]interface{}{
		"runId":          input.RunID,
		"quoteId":        input.QuoteID,
		"notificationId": output.NotificationID,
		"status":         output.Status,
	})
	return output, nil
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
