// internal/workers/appetite/score-appetite-matches/models.go
package scoreappetitematches

import "appetite-workers/internal/models"

type Input struct {
	QuoteID       string               `json:"quoteId"`
	ClientProfile models.ClientProfile `json:"clientProfile"`
	// Absent or null means load candidates from the appetite store.
	UnderwriterAppetites []models.UnderwriterAppetite `json:"underwriterAppetites,omitempty"`
}

type Output struct {
	RunID          string               `json:"runId"`
	TopMatches     []models.MatchResult `json:"topMatches"`
	NearestMisses  []models.MatchResult `json:"nearestMisses"`
	TotalEvaluated int                  `json:"totalEvaluated"`
	ExcludedCount  int                  `json:"excludedCount"`
	MatchedAt      string               `json:"matchedAt"` // ISO 8601
}
