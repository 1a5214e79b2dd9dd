// internal/appetite/formatter.go
package appetite

import (
	"fmt"
	"strings"

	"appetite-workers/internal/models"
)

// Finding factors and outcomes emitted by ScoreMatch.
const (
	FactorCoverage     = models.CategoryCoverage
	FactorJurisdiction = models.CategoryJurisdiction
	FactorIndustry     = models.CategoryIndustry
	FactorRevenue      = models.CategoryRevenue
	FactorSecurity     = models.CategorySecurity
	FactorExclusions   = models.CategoryExclusions

	OutcomeWithin  = "within"
	OutcomeNear    = "near"
	OutcomeBelow   = "below"
	OutcomeAbove   = "above"
	OutcomeAll     = "all"
	OutcomePartial = "partial"
	OutcomeNone    = "none"
	OutcomeDirect  = "direct"
	OutcomeSector  = "sector"
	OutcomeOutside = "outside"
	OutcomeMet     = "met"
	OutcomeMissing = "missing"
	OutcomeHit     = "hit"
)

// Finding value keys.
const (
	ValueRequested = "requested"
	ValueMin       = "min"
	ValueMax       = "max"
	ValueRevenue   = "revenue"
	ValueMatched   = "matched"
	ValueTotal     = "total"
)

// Formatter renders a finding as a human-readable reason.
type Formatter interface {
	Render(f models.Finding) string
}

// MoneyFormatter renders amounts in millions with a currency symbol, e.g. "£5.0m".
type MoneyFormatter struct {
	Symbol string
}

// GBPFormatter is the default formatter.
func GBPFormatter() MoneyFormatter {
	return MoneyFormatter{Symbol: "£"}
}

func (m MoneyFormatter) Money(v float64) string {
	return fmt.Sprintf("%s%.1fm", m.Symbol, v/1e6)
}

func (m MoneyFormatter) Range(values map[string]float64) string {
	lo, hasLo := values[ValueMin]
	hi, hasHi := values[ValueMax]
	switch {
	case hasLo && hasHi:
		return m.Money(lo) + "-" + m.Money(hi)
	case hasHi:
		return "up to " + m.Money(hi)
	case hasLo:
		return m.Money(lo) + "+"
	default:
		return "unbounded"
	}
}

func (m MoneyFormatter) Render(f models.Finding) string {
	v := f.Values
	labels := strings.Join(f.Labels, ", ")

	switch f.Factor {
	case FactorCoverage:
		switch f.Outcome {
		case OutcomeWithin:
			return fmt.Sprintf("Coverage capacity %s within appetite (%s)", m.Money(v[ValueRequested]), m.Range(v))
		case OutcomeNear:
			return fmt.Sprintf("Coverage %s near appetite range (%s)", m.Money(v[ValueRequested]), m.Range(v))
		case OutcomeBelow:
			return fmt.Sprintf("Requested %s below minimum %s", m.Money(v[ValueRequested]), m.Money(v[ValueMin]))
		case OutcomeAbove:
			return fmt.Sprintf("Requested %s exceeds maximum %s", m.Money(v[ValueRequested]), m.Money(v[ValueMax]))
		}
	case FactorJurisdiction:
		switch f.Outcome {
		case OutcomeAll:
			return fmt.Sprintf("Covers all jurisdictions (%s)", labels)
		case OutcomePartial:
			return fmt.Sprintf("Covers %d of %d jurisdictions", int(v[ValueMatched]), int(v[ValueTotal]))
		case OutcomeNone:
			return fmt.Sprintf("Jurisdictions not covered (%s)", labels)
		}
	case FactorIndustry:
		switch f.Outcome {
		case OutcomeDirect:
			return fmt.Sprintf("Direct industry match: %s", labels)
		case OutcomeSector:
			return fmt.Sprintf("Target sector match: %s", labels)
		}
	case FactorRevenue:
		switch f.Outcome {
		case OutcomeWithin:
			return fmt.Sprintf("Revenue %s within range (%s)", m.Money(v[ValueRevenue]), m.Range(v))
		case OutcomeOutside:
			return fmt.Sprintf("Revenue %s outside range (%s)", m.Money(v[ValueRevenue]), m.Range(v))
		}
	case FactorSecurity:
		switch f.Outcome {
		case OutcomeMet:
			return fmt.Sprintf("Meets security requirements (%s)", labels)
		case OutcomeMissing:
			return fmt.Sprintf("Missing security controls: %s", labels)
		}
	case FactorExclusions:
		if f.Outcome == OutcomeHit {
			return fmt.Sprintf("Hard exclusion: %s", labels)
		}
	}
	return fmt.Sprintf("%s %s", f.Factor, f.Outcome)
}
