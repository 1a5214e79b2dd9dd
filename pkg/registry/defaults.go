// pkg/registry/defaults.go
package registry

import (
	"time"

	"appetite-workers/internal/common/errors"
	"appetite-workers/internal/common/validation"
)

const (
	CategoryAppetite = "appetite"
	WorkflowQuote    = "quote-placement"
)

// Default describes the appetite matching task types served by worker-manager.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities: []Activity{
			{
				ID:                   "score-appetite-matches",
				DisplayName:          "Score Appetite Matches",
				Description:          "Scores a client profile against underwriter appetites and partitions top matches and nearest misses",
				Category:             CategoryAppetite,
				Version:              "1.0.0",
				TaskType:             "score-appetite-matches",
				ImplementationStatus: StatusCompleted,
				InputSchema:          validation.ScoreJobSchema(),
				OutputSchema: object(map[string]interface{}{
					"runId":          str(),
					"topMatches":     array(),
					"nearestMisses":  array(),
					"totalEvaluated": integer(),
					"excludedCount":  integer(),
					"matchedAt":      str(),
				}),
				ErrorCodes: codes(
					errors.ErrCodeInvalidMatchInput,
					errors.ErrCodeAppetiteLookupFailed,
					errors.ErrCodeAppetiteSearchFailed,
					errors.ErrCodeMatchTimeout,
				),
				Timeout:   "30s",
				Retries:   errors.GetRetryCount(errors.ErrCodeAppetiteLookupFailed),
				Workflows: []string{WorkflowQuote},
				Tags:      []string{"appetite", "scoring"},
			},
			{
				ID:                   "persist-appetite-matches",
				DisplayName:          "Persist Appetite Matches",
				Description:          "Stores the top matches of a run against the quote",
				Category:             CategoryAppetite,
				Version:              "1.0.0",
				TaskType:             "persist-appetite-matches",
				ImplementationStatus: StatusCompleted,
				InputSchema:          validation.PersistJobSchema(),
				OutputSchema: object(map[string]interface{}{
					"persistedCount": integer(),
					"persistedAt":    str(),
				}),
				ErrorCodes: codes(
					errors.ErrCodeInvalidMatchInput,
					errors.ErrCodeMatchPersistFailed,
				),
				Timeout:   "15s",
				Retries:   errors.GetRetryCount(errors.ErrCodeMatchPersistFailed),
				Workflows: []string{WorkflowQuote},
				Tags:      []string{"appetite", "postgres"},
			},
			{
				ID:                   "notify-appetite-matches",
				DisplayName:          "Notify Appetite Matches",
				Description:          "Emails the broker a match summary and publishes a matches-completed event",
				Category:             CategoryAppetite,
				Version:              "1.0.0",
				TaskType:             "notify-appetite-matches",
				ImplementationStatus: StatusCompleted,
				InputSchema:          validation.NotifyJobSchema(),
				OutputSchema: object(map[string]interface{}{
					"notificationId": str(),
					"status":         str(),
					"emailMessageId": str(),
					"eventMessageId": str(),
					"sentAt":         str(),
				}),
				ErrorCodes: codes(
					errors.ErrCodeInvalidMatchInput,
					errors.ErrCodeMatchNotificationFailed,
				),
				Timeout:   "20s",
				Retries:   errors.GetRetryCount(errors.ErrCodeMatchNotificationFailed),
				Workflows: []string{WorkflowQuote},
				Tags:      []string{"appetite", "ses", "sns"},
			},
		},
	}
}

func object(props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": props}
}

func str() map[string]interface{}     { return map[string]interface{}{"type": "string"} }
func integer() map[string]interface{} { return map[string]interface{}{"type": "integer"} }
func array() map[string]interface{}   { return map[string]interface{}{"type": "array"} }

func codes(cs ...errors.ErrorCode) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
