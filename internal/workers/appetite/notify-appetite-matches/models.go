// internal/workers/appetite/notify-appetite-matches/models.go
package notifyappetitematches

import "appetite-workers/internal/models"

type Input struct {
	RunID         string               `json:"runId"`
	QuoteID       string               `json:"quoteId"`
	BrokerEmail   string               `json:"brokerEmail,omitempty"`
	TopMatches    []models.MatchResult `json:"topMatches"`
	NearestMisses []models.MatchResult `json:"nearestMisses,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "disabled"
	EmailMessageID string `json:"emailMessageId,omitempty"`
	EventMessageID string `json:"eventMessageId,omitempty"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// MatchesCompletedEvent is published to the match events topic.
type MatchesCompletedEvent struct {
	EventType      string         `json:"eventType"`
	NotificationID string         `json:"notificationId"`
	RunID          string         `json:"runId"`
	QuoteID        string         `json:"quoteId"`
	TopMatches     []MatchSummary `json:"topMatches"`
	NearestMisses  []MatchSummary `json:"nearestMisses"`
	OccurredAt     string         `json:"occurredAt"`
}

type MatchSummary struct {
	UnderwriterID   string `json:"underwriterId"`
	UnderwriterName string `json:"underwriterName,omitempty"`
	ConfidenceScore int    `json:"confidenceScore"`
}

const EventMatchesCompleted = "appetite.matches.completed"

// Statuses
const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)
