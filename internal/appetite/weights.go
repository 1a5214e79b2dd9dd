// internal/appetite/weights.go
package appetite

// Score bounds applied after every factor and the exclusion override.
const (
	ScoreFloor   = 0
	ScoreCeiling = 100
)

// ScoringWeights holds every point value and threshold factor used by ScoreMatch.
type ScoringWeights struct {
	Base int `mapstructure:"base" json:"base"`

	CoverageWithinRange  int     `mapstructure:"coverage_within_range" json:"coverage_within_range"`
	CoverageNearRange    int     `mapstructure:"coverage_near_range" json:"coverage_near_range"`
	CoverageBelowMinimum int     `mapstructure:"coverage_below_minimum" json:"coverage_below_minimum"`
	CoverageAboveMaximum int     `mapstructure:"coverage_above_maximum" json:"coverage_above_maximum"`
	NearRangeUpperFactor float64 `mapstructure:"near_range_upper_factor" json:"near_range_upper_factor"`
	NearRangeLowerFactor float64 `mapstructure:"near_range_lower_factor" json:"near_range_lower_factor"`
	AboveMaximumFactor   float64 `mapstructure:"above_maximum_factor" json:"above_maximum_factor"`

	JurisdictionAll     int `mapstructure:"jurisdiction_all" json:"jurisdiction_all"`
	JurisdictionPartial int `mapstructure:"jurisdiction_partial" json:"jurisdiction_partial"`
	JurisdictionNone    int `mapstructure:"jurisdiction_none" json:"jurisdiction_none"`

	IndustryDirect int `mapstructure:"industry_direct" json:"industry_direct"`
	IndustrySector int `mapstructure:"industry_sector" json:"industry_sector"`

	RevenueWithin  int `mapstructure:"revenue_within" json:"revenue_within"`
	RevenueOutside int `mapstructure:"revenue_outside" json:"revenue_outside"`

	SecurityMet     int `mapstructure:"security_met" json:"security_met"`
	SecurityMissing int `mapstructure:"security_missing" json:"security_missing"`

	// ExclusionPenalty is recorded in the breakdown when a hard exclusion hits.
	// The confidence score itself is forced to ScoreFloor.
	ExclusionPenalty int `mapstructure:"exclusion_penalty" json:"exclusion_penalty"`

	MaxPrimaryReasons    int `mapstructure:"max_primary_reasons" json:"max_primary_reasons"`
	ExplanationReasons   int `mapstructure:"explanation_reasons" json:"explanation_reasons"`
	MaxExplanationLength int `mapstructure:"max_explanation_length" json:"max_explanation_length"`
}

// DefaultWeights returns the production weighting scheme.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Base: 50,

		CoverageWithinRange:  20,
		CoverageNearRange:    5,
		CoverageBelowMinimum: -15,
		CoverageAboveMaximum: -30,
		NearRangeUpperFactor: 1.1,
		NearRangeLowerFactor: 0.9,
		AboveMaximumFactor:   1.2,

		JurisdictionAll:     10,
		JurisdictionPartial: -10,
		JurisdictionNone:    -20,

		IndustryDirect: 20,
		IndustrySector: 10,

		RevenueWithin:  5,
		RevenueOutside: -10,

		SecurityMet:     5,
		SecurityMissing: -20,

		ExclusionPenalty: -100,

		MaxPrimaryReasons:    3,
		ExplanationReasons:   2,
		MaxExplanationLength: 200,
	}
}
