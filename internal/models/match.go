// internal/models/match.go
package models

import "time"

type CoverageFit string

const (
	CoverageFitUnknown      CoverageFit = "unknown"
	CoverageFitWithinRange  CoverageFit = "within-range"
	CoverageFitNearRange    CoverageFit = "near-range"
	CoverageFitBelowMinimum CoverageFit = "below-minimum"
	CoverageFitAboveMaximum CoverageFit = "above-maximum"
)

type IndustryFit string

const (
	IndustryFitNoMatch     IndustryFit = "no-match"
	IndustryFitSectorMatch IndustryFit = "sector-match"
	IndustryFitDirectMatch IndustryFit = "direct-match"
)

// Score breakdown categories. Every MatchResult carries all of them.
const (
	CategoryBase         = "base"
	CategoryCoverage     = "coverage"
	CategoryJurisdiction = "jurisdiction"
	CategoryIndustry     = "industry"
	CategoryRevenue      = "revenue"
	CategorySecurity     = "security"
	CategoryExclusions   = "exclusions"
)

// BreakdownCategories lists the categories in evaluation order.
var BreakdownCategories = []string{
	CategoryBase,
	CategoryCoverage,
	CategoryJurisdiction,
	CategoryIndustry,
	CategoryRevenue,
	CategorySecurity,
	CategoryExclusions,
}

// Finding is the structured form of one factor outcome. Reason strings are
// rendered from findings so currency and wording stay out of the scoring path.
type Finding struct {
	Factor   string             `json:"factor"`
	Outcome  string             `json:"outcome"`
	Positive bool               `json:"positive"`
	Values   map[string]float64 `json:"values,omitempty"`
	Labels   []string           `json:"labels,omitempty"`
}

// MatchResult is the explained score of one client against one underwriter.
type MatchResult struct {
	UnderwriterID   string         `json:"underwriter_id"`
	UnderwriterName string         `json:"underwriter_name"`
	ConfidenceScore int            `json:"confidence_score"`
	CoverageFit     CoverageFit    `json:"coverage_fit"`
	JurisdictionFit bool           `json:"jurisdiction_fit"`
	IndustryFit     IndustryFit    `json:"industry_fit"`
	CapacityFitDiff *float64       `json:"capacity_fit_diff"`
	ExclusionsHit   []string       `json:"exclusions_hit"`
	PrimaryReasons  []string       `json:"primary_reasons"`
	Explanation     string         `json:"explanation"`
	ScoreBreakdown  map[string]int `json:"score_breakdown"`
	Findings        []Finding      `json:"findings,omitempty"`
}

// MatchRecord is a persisted top match.
type MatchRecord struct {
	RunID     string    `json:"run_id"`
	QuoteID   string    `json:"quote_id"`
	CreatedAt time.Time `json:"created_at"`
	MatchResult
}
