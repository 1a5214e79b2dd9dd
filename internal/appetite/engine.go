// internal/appetite/engine.go
package appetite

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"appetite-workers/internal/models"
)

// Engine scores client profiles against underwriter appetites.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights           ScoringWeights
	rules             PartitionRules
	formatter         Formatter
	parallelThreshold int
	maxParallel       int
}

type Option func(*Engine)

func WithFormatter(f Formatter) Option {
	return func(e *Engine) {
		if f != nil {
			e.formatter = f
		}
	}
}

func WithPartitionRules(r PartitionRules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithParallelism scores candidates concurrently once a run has more than
// threshold candidates, with at most limit goroutines. threshold <= 0 disables it.
func WithParallelism(threshold, limit int) Option {
	return func(e *Engine) {
		e.parallelThreshold = threshold
		e.maxParallel = limit
	}
}

func NewEngine(weights ScoringWeights, opts ...Option) *Engine {
	e := &Engine{
		weights:   weights,
		rules:     DefaultPartitionRules(),
		formatter: GBPFormatter(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Weights() ScoringWeights { return e.weights }

func (e *Engine) Rules() PartitionRules { return e.rules }

// ScoreMatch computes the explained score of client against uw. Optional
// appetite fields that are unset skip their factor entirely.
func (e *Engine) ScoreMatch(client models.ClientProfile, uw models.UnderwriterAppetite) models.MatchResult {
	w := e.weights

	result := models.MatchResult{
		UnderwriterID:   uw.UnderwriterID,
		UnderwriterName: uw.UnderwriterName,
		CoverageFit:     models.CoverageFitUnknown,
		IndustryFit:     models.IndustryFitNoMatch,
		ExclusionsHit:   []string{},
		PrimaryReasons:  []string{},
		ScoreBreakdown:  make(map[string]int, len(models.BreakdownCategories)),
	}
	for _, c := range models.BreakdownCategories {
		result.ScoreBreakdown[c] = 0
	}
	result.ScoreBreakdown[models.CategoryBase] = w.Base

	var findings []models.Finding
	add := func(category string, points int, f *models.Finding) {
		result.ScoreBreakdown[category] += points
		if f != nil {
			findings = append(findings, *f)
		}
	}

	if uw.HasCoverageRange() {
		points, fit, f := e.coverage(client.RequestedCoverageAmount, uw.CoverageAmountMin, uw.CoverageAmountMax)
		if fit != "" {
			result.CoverageFit = fit
		}
		add(models.CategoryCoverage, points, f)
	}
	if uw.CoverageAmountMax != nil {
		diff := client.RequestedCoverageAmount - *uw.CoverageAmountMax
		result.CapacityFitDiff = &diff
	}

	if len(uw.Jurisdictions) > 0 && len(client.Jurisdictions) > 0 {
		points, fit, f := e.jurisdiction(client.Jurisdictions, uw.Jurisdictions)
		result.JurisdictionFit = fit
		add(models.CategoryJurisdiction, points, f)
	}

	if len(uw.IndustryClasses) > 0 {
		if label, ok := firstContaining(client.Industry, uw.IndustryClasses); ok {
			result.IndustryFit = models.IndustryFitDirectMatch
			add(models.CategoryIndustry, w.IndustryDirect, &models.Finding{
				Factor: FactorIndustry, Outcome: OutcomeDirect, Positive: true, Labels: []string{label},
			})
		} else if label, ok := firstContaining(client.Industry, uw.TargetSectors); ok {
			result.IndustryFit = models.IndustryFitSectorMatch
			add(models.CategoryIndustry, w.IndustrySector, &models.Finding{
				Factor: FactorIndustry, Outcome: OutcomeSector, Positive: true, Labels: []string{label},
			})
		}
	}

	if uw.HasRevenueRange() {
		points, f := e.revenue(client.Revenue, uw.RevenueRangeMin, uw.RevenueRangeMax)
		add(models.CategoryRevenue, points, f)
	}

	if len(uw.SecurityRequirements) > 0 && len(client.SecurityControls) > 0 {
		points, f := e.security(client.SecurityControls, uw.SecurityRequirements)
		add(models.CategorySecurity, points, f)
	}

	var exclusion *models.Finding
	if len(uw.Exclusions) > 0 {
		for _, keyword := range uw.Exclusions {
			if containsEither(keyword, client.Industry) {
				result.ExclusionsHit = append(result.ExclusionsHit, keyword)
				continue
			}
			if _, ok := firstContaining(keyword, client.SpecialExposures); ok {
				result.ExclusionsHit = append(result.ExclusionsHit, keyword)
			}
		}
		if len(result.ExclusionsHit) > 0 {
			result.ScoreBreakdown[models.CategoryExclusions] = w.ExclusionPenalty
			exclusion = &models.Finding{
				Factor:  FactorExclusions,
				Outcome: OutcomeHit,
				Labels:  append([]string(nil), result.ExclusionsHit...),
			}
			findings = append(findings, *exclusion)
		}
	}

	score := ScoreFloor
	if exclusion == nil {
		for _, c := range models.BreakdownCategories {
			score += result.ScoreBreakdown[c]
		}
	}
	result.ConfidenceScore = clamp(score)
	result.Findings = findings

	e.explain(&result, exclusion)
	return result
}

func (e *Engine) coverage(requested float64, minPtr, maxPtr *float64) (int, models.CoverageFit, *models.Finding) {
	w := e.weights
	lo, hi := 0.0, math.Inf(1)
	values := map[string]float64{ValueRequested: requested}
	if minPtr != nil {
		lo = *minPtr
		values[ValueMin] = lo
	}
	if maxPtr != nil {
		hi = *maxPtr
		values[ValueMax] = hi
	}

	finding := func(outcome string, positive bool) *models.Finding {
		return &models.Finding{Factor: FactorCoverage, Outcome: outcome, Positive: positive, Values: values}
	}

	switch {
	case lo <= requested && requested <= hi:
		return w.CoverageWithinRange, models.CoverageFitWithinRange, finding(OutcomeWithin, true)
	case requested <= hi*w.NearRangeUpperFactor && requested >= lo*w.NearRangeLowerFactor:
		return w.CoverageNearRange, models.CoverageFitNearRange, finding(OutcomeNear, true)
	case requested < lo:
		return w.CoverageBelowMinimum, models.CoverageFitBelowMinimum, finding(OutcomeBelow, false)
	case requested > hi*w.AboveMaximumFactor:
		return w.CoverageAboveMaximum, models.CoverageFitAboveMaximum, finding(OutcomeAbove, false)
	}
	// Between the near band and the hard threshold: no adjustment, fit left unknown.
	return 0, "", nil
}

func (e *Engine) jurisdiction(client, underwriter []string) (int, bool, *models.Finding) {
	w := e.weights
	matched := 0
	var missing []string
	for _, cj := range client {
		found := false
		for _, uj := range underwriter {
			if jurisdictionMatches(cj, uj) {
				found = true
				break
			}
		}
		if found {
			matched++
		} else {
			missing = append(missing, cj)
		}
	}

	values := map[string]float64{ValueMatched: float64(matched), ValueTotal: float64(len(client))}
	switch {
	case matched == len(client):
		return w.JurisdictionAll, true, &models.Finding{
			Factor: FactorJurisdiction, Outcome: OutcomeAll, Positive: true, Values: values,
			Labels: append([]string(nil), client...),
		}
	case matched > 0:
		return w.JurisdictionPartial, false, &models.Finding{
			Factor: FactorJurisdiction, Outcome: OutcomePartial, Values: values, Labels: missing,
		}
	default:
		return w.JurisdictionNone, false, &models.Finding{
			Factor: FactorJurisdiction, Outcome: OutcomeNone, Values: values, Labels: missing,
		}
	}
}

func (e *Engine) revenue(revenue, minPtr, maxPtr *float64) (int, *models.Finding) {
	lo, hi, rev := 0.0, math.Inf(1), 0.0
	if revenue != nil {
		rev = *revenue
	}
	values := map[string]float64{ValueRevenue: rev}
	if minPtr != nil {
		lo = *minPtr
		values[ValueMin] = lo
	}
	if maxPtr != nil {
		hi = *maxPtr
		values[ValueMax] = hi
	}

	if lo <= rev && rev <= hi {
		return e.weights.RevenueWithin, &models.Finding{
			Factor: FactorRevenue, Outcome: OutcomeWithin, Positive: true, Values: values,
		}
	}
	return e.weights.RevenueOutside, &models.Finding{
		Factor: FactorRevenue, Outcome: OutcomeOutside, Values: values,
	}
}

func (e *Engine) security(controls, required []string) (int, *models.Finding) {
	var missing []string
	for _, req := range required {
		if _, ok := firstContaining(req, controls); !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) == 0 {
		return e.weights.SecurityMet, &models.Finding{
			Factor: FactorSecurity, Outcome: OutcomeMet, Positive: true,
			Labels: append([]string(nil), required...),
		}
	}
	return e.weights.SecurityMissing, &models.Finding{
		Factor: FactorSecurity, Outcome: OutcomeMissing, Labels: missing,
	}
}

// explain renders findings into primary reasons and the one-line explanation.
// An exclusion hit is always the first failed criterion.
func (e *Engine) explain(result *models.MatchResult, exclusion *models.Finding) {
	w := e.weights

	var positive, failed []string
	if exclusion != nil {
		failed = append(failed, e.formatter.Render(*exclusion))
	}
	for _, f := range result.Findings {
		if f.Factor == FactorExclusions {
			continue
		}
		if f.Positive {
			positive = append(positive, e.formatter.Render(f))
		} else {
			failed = append(failed, e.formatter.Render(f))
		}
	}

	result.PrimaryReasons = append(result.PrimaryReasons, head(positive, w.MaxPrimaryReasons)...)

	var explanation string
	if len(positive) > 0 {
		explanation = strings.Join(head(positive, w.ExplanationReasons), "; ")
		if len(failed) > 0 {
			explanation += ". Watch: " + failed[0]
		}
	} else {
		explanation = strings.TrimSpace(
			"Score " + strconv.Itoa(result.ConfidenceScore) + "/100. " + strings.Join(head(failed, w.ExplanationReasons), "; "),
		)
	}
	result.Explanation = truncate(explanation, w.MaxExplanationLength)
}

func clamp(score int) int {
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeiling {
		return ScoreCeiling
	}
	return score
}

func head(items []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
