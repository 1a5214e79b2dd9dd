// internal/workers/appetite/persist-appetite-matches/models.go
package persistappetitematches

import "appetite-workers/internal/models"

type Input struct {
	RunID      string               `json:"runId"`
	QuoteID    string               `json:"quoteId"`
	TopMatches []models.MatchResult `json:"topMatches"`
}

type Output struct {
	PersistedCount int    `json:"persistedCount"`
	PersistedAt    string `json:"persistedAt"` // ISO 8601
}
