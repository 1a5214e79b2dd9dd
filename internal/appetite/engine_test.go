// internal/appetite/engine_test.go
package appetite

import (
	"strings"
	"testing"
	"unicode/utf8"

	"appetite-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestEngine() *Engine {
	return NewEngine(DefaultWeights())
}

func rangedUnderwriter(min, max float64) models.UnderwriterAppetite {
	return models.UnderwriterAppetite{
		UnderwriterID:     "uw-1",
		UnderwriterName:   "Test Syndicate",
		CoverageAmountMin: models.Float64(min),
		CoverageAmountMax: models.Float64(max),
	}
}

func clientRequesting(amount float64) models.ClientProfile {
	return models.ClientProfile{
		Industry:                "Software Development",
		RequestedCoverageAmount: amount,
		InsuranceProduct:        "cyber",
	}
}

// ==========================
// Coverage Tests
// ==========================

func TestScoreMatch_Coverage(t *testing.T) {
	tests := []struct {
		name          string
		requested     float64
		expectedFit   models.CoverageFit
		expectedDelta int
	}{
		{"within range", 5_000_000, models.CoverageFitWithinRange, 20},
		{"at minimum", 1_000_000, models.CoverageFitWithinRange, 20},
		{"at maximum", 10_000_000, models.CoverageFitWithinRange, 20},
		{"just above maximum", 10_500_000, models.CoverageFitNearRange, 5},
		{"below minimum", 500_000, models.CoverageFitBelowMinimum, -15},
		{"just below minimum", 950_000, models.CoverageFitNearRange, 5},
		{"above hard maximum", 15_000_000, models.CoverageFitAboveMaximum, -30},
		{"gap between near band and hard maximum", 11_500_000, models.CoverageFitUnknown, 0},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.ScoreMatch(clientRequesting(tt.requested), rangedUnderwriter(1_000_000, 10_000_000))

			assert.Equal(t, tt.expectedFit, result.CoverageFit)
			assert.Equal(t, tt.expectedDelta, result.ScoreBreakdown[models.CategoryCoverage])
			assert.Equal(t, 50+tt.expectedDelta, result.ConfidenceScore)
			require.NotNil(t, result.CapacityFitDiff)
			assert.InDelta(t, tt.requested-10_000_000, *result.CapacityFitDiff, 0.001)
		})
	}
}

func TestScoreMatch_CoverageOpenEnded(t *testing.T) {
	engine := newTestEngine()

	onlyMin := models.UnderwriterAppetite{CoverageAmountMin: models.Float64(2_000_000)}
	result := engine.ScoreMatch(clientRequesting(50_000_000), onlyMin)
	assert.Equal(t, models.CoverageFitWithinRange, result.CoverageFit)
	assert.Nil(t, result.CapacityFitDiff)
	assert.Contains(t, result.PrimaryReasons[0], "£2.0m+")

	onlyMax := models.UnderwriterAppetite{CoverageAmountMax: models.Float64(5_000_000)}
	result = engine.ScoreMatch(clientRequesting(0), onlyMax)
	assert.Equal(t, models.CoverageFitWithinRange, result.CoverageFit)
	require.NotNil(t, result.CapacityFitDiff)
	assert.Equal(t, -5_000_000.0, *result.CapacityFitDiff)
	assert.Contains(t, result.PrimaryReasons[0], "up to £5.0m")
}

func TestScoreMatch_NegativeCoveragePropagates(t *testing.T) {
	result := newTestEngine().ScoreMatch(clientRequesting(-1_000_000), rangedUnderwriter(1_000_000, 10_000_000))

	assert.Equal(t, models.CoverageFitBelowMinimum, result.CoverageFit)
	assert.Equal(t, 35, result.ConfidenceScore)
}

// ==========================
// Jurisdiction Tests
// ==========================

func TestScoreMatch_Jurisdiction(t *testing.T) {
	tests := []struct {
		name          string
		client        []string
		underwriter   []string
		expectedFit   bool
		expectedDelta int
	}{
		{"aliases and prefixes", []string{"UK", "US"}, []string{"United Kingdom", "United States", "Germany"}, true, 10},
		{"case insensitive equality", []string{"germany"}, []string{"Germany"}, true, 10},
		{"prefix in either direction", []string{"United"}, []string{"United Kingdom"}, true, 10},
		{"abbreviation prefixes subdivision", []string{"US"}, []string{"US-NY"}, true, 10},
		{"abbreviation prefixes longer code", []string{"GB"}, []string{"GBR"}, true, 10},
		{"alias does not hide raw prefix", []string{"UK"}, []string{"UKGB"}, true, 10},
		{"mixed raw and alias matches", []string{"US", "UK"}, []string{"US-CA", "United Kingdom"}, true, 10},
		{"partial", []string{"UK", "France"}, []string{"United Kingdom"}, false, -10},
		{"none", []string{"France"}, []string{"United Kingdom", "Germany"}, false, -20},
		{"empty label never matches", []string{""}, []string{"Germany"}, false, -20},
		{"client unset skips factor", nil, []string{"Germany"}, false, 0},
		{"underwriter unset skips factor", []string{"France"}, nil, false, 0},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := clientRequesting(1)
			client.Jurisdictions = tt.client
			uw := models.UnderwriterAppetite{Jurisdictions: tt.underwriter}

			result := engine.ScoreMatch(client, uw)

			assert.Equal(t, tt.expectedFit, result.JurisdictionFit)
			assert.Equal(t, tt.expectedDelta, result.ScoreBreakdown[models.CategoryJurisdiction])
			assert.Equal(t, 50+tt.expectedDelta, result.ConfidenceScore)
		})
	}
}

// ==========================
// Industry Tests
// ==========================

func TestScoreMatch_Industry(t *testing.T) {
	tests := []struct {
		name          string
		industry      string
		classes       []string
		sectors       []string
		expectedFit   models.IndustryFit
		expectedDelta int
	}{
		{"direct match", "Technology Services", []string{"Technology"}, nil, models.IndustryFitDirectMatch, 20},
		{"direct match reverse containment", "tech", []string{"Technology"}, nil, models.IndustryFitDirectMatch, 20},
		{"sector fallback", "Fintech Payments", []string{"Manufacturing"}, []string{"fintech"}, models.IndustryFitSectorMatch, 10},
		{"no match", "Retail", []string{"Manufacturing"}, []string{"Energy"}, models.IndustryFitNoMatch, 0},
		{"sectors ignored without classes", "Retail", nil, []string{"Retail"}, models.IndustryFitNoMatch, 0},
		{"empty industry never matches", "", []string{"Manufacturing"}, nil, models.IndustryFitNoMatch, 0},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := clientRequesting(1)
			client.Industry = tt.industry
			uw := models.UnderwriterAppetite{IndustryClasses: tt.classes, TargetSectors: tt.sectors}

			result := engine.ScoreMatch(client, uw)

			assert.Equal(t, tt.expectedFit, result.IndustryFit)
			assert.Equal(t, tt.expectedDelta, result.ScoreBreakdown[models.CategoryIndustry])
		})
	}
}

// ==========================
// Revenue & Security Tests
// ==========================

func TestScoreMatch_Revenue(t *testing.T) {
	uw := models.UnderwriterAppetite{
		RevenueRangeMin: models.Float64(1_000_000),
		RevenueRangeMax: models.Float64(50_000_000),
	}
	engine := newTestEngine()

	client := clientRequesting(1)
	client.Revenue = models.Float64(2_000_000)
	assert.Equal(t, 5, engine.ScoreMatch(client, uw).ScoreBreakdown[models.CategoryRevenue])

	client.Revenue = models.Float64(80_000_000)
	assert.Equal(t, -10, engine.ScoreMatch(client, uw).ScoreBreakdown[models.CategoryRevenue])

	// Missing revenue is treated as zero.
	client.Revenue = nil
	result := engine.ScoreMatch(client, uw)
	assert.Equal(t, -10, result.ScoreBreakdown[models.CategoryRevenue])
	assert.Equal(t, "Score 40/100. Revenue £0.0m outside range (£1.0m-£50.0m)", result.Explanation)
}

func TestScoreMatch_Security(t *testing.T) {
	tests := []struct {
		name          string
		controls      []string
		required      []string
		expectedDelta int
	}{
		{"all required present", []string{"MFA enabled", "EDR"}, []string{"MFA", "EDR"}, 5},
		{"one missing forfeits bonus", []string{"MFA"}, []string{"MFA", "EDR"}, -20},
		{"client controls unset", nil, []string{"MFA"}, 0},
		{"no requirements", []string{"MFA"}, nil, 0},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := clientRequesting(1)
			client.SecurityControls = tt.controls
			uw := models.UnderwriterAppetite{SecurityRequirements: tt.required}

			result := engine.ScoreMatch(client, uw)
			assert.Equal(t, tt.expectedDelta, result.ScoreBreakdown[models.CategorySecurity])
		})
	}
}

// ==========================
// Exclusion Tests
// ==========================

func TestScoreMatch_ExclusionOverridesFavourableFactors(t *testing.T) {
	client := models.ClientProfile{
		Industry:                "Asbestos Removal Contractor",
		RequestedCoverageAmount: 5_000_000,
		Jurisdictions:           models.StringList{"UK"},
	}
	uw := rangedUnderwriter(1_000_000, 10_000_000)
	uw.Jurisdictions = models.StringList{"United Kingdom"}
	uw.IndustryClasses = models.StringList{"Asbestos Removal"}
	uw.Exclusions = models.StringList{"asbestos"}

	result := newTestEngine().ScoreMatch(client, uw)

	assert.Equal(t, 0, result.ConfidenceScore)
	assert.Equal(t, []string{"asbestos"}, result.ExclusionsHit)
	assert.Equal(t, -100, result.ScoreBreakdown[models.CategoryExclusions])
	assert.Equal(t, 20, result.ScoreBreakdown[models.CategoryCoverage])
	assert.True(t, strings.HasSuffix(result.Explanation, ". Watch: Hard exclusion: asbestos"), result.Explanation)
}

func TestScoreMatch_ExclusionSources(t *testing.T) {
	engine := newTestEngine()

	client := clientRequesting(1)
	client.SpecialExposures = models.StringList{"Crypto custody services"}
	uw := models.UnderwriterAppetite{Exclusions: models.StringList{"crypto", "gambling"}}

	result := engine.ScoreMatch(client, uw)
	assert.Equal(t, 0, result.ConfidenceScore)
	assert.Equal(t, []string{"crypto"}, result.ExclusionsHit)

	// Duplicate keywords are recorded as given.
	uw.Exclusions = models.StringList{"crypto", "Crypto"}
	result = engine.ScoreMatch(client, uw)
	assert.Equal(t, []string{"crypto", "Crypto"}, result.ExclusionsHit)

	uw.Exclusions = models.StringList{"gambling"}
	result = engine.ScoreMatch(client, uw)
	assert.Equal(t, 50, result.ConfidenceScore)
	assert.Empty(t, result.ExclusionsHit)
	assert.Equal(t, 0, result.ScoreBreakdown[models.CategoryExclusions])
}

// ==========================
// Scoring Scenarios
// ==========================

func TestScoreMatch_UnconstrainedAppetiteIsBaseOnly(t *testing.T) {
	result := newTestEngine().ScoreMatch(clientRequesting(5_000_000), models.UnderwriterAppetite{
		UnderwriterID:   "uw-open",
		UnderwriterName: "Open Market",
	})

	assert.Equal(t, 50, result.ConfidenceScore)
	assert.Equal(t, models.CoverageFitUnknown, result.CoverageFit)
	assert.Equal(t, models.IndustryFitNoMatch, result.IndustryFit)
	assert.False(t, result.JurisdictionFit)
	assert.Nil(t, result.CapacityFitDiff)
	assert.Empty(t, result.PrimaryReasons)
	assert.Empty(t, result.ExclusionsHit)
	assert.Equal(t, "Score 50/100.", result.Explanation)
	assert.Len(t, result.ScoreBreakdown, len(models.BreakdownCategories))
	for _, c := range models.BreakdownCategories {
		assert.Contains(t, result.ScoreBreakdown, c)
	}
}

func TestScoreMatch_ClampsAtCeiling(t *testing.T) {
	client := models.ClientProfile{
		Industry:                "Technology",
		RequestedCoverageAmount: 5_000_000,
		Revenue:                 models.Float64(10_000_000),
		Jurisdictions:           models.StringList{"UK"},
		SecurityControls:        models.StringList{"MFA", "EDR", "Backups"},
	}
	uw := rangedUnderwriter(1_000_000, 10_000_000)
	uw.Jurisdictions = models.StringList{"United Kingdom"}
	uw.IndustryClasses = models.StringList{"Technology"}
	uw.RevenueRangeMax = models.Float64(100_000_000)
	uw.SecurityRequirements = models.StringList{"MFA", "EDR"}

	result := newTestEngine().ScoreMatch(client, uw)

	assert.Equal(t, 100, result.ConfidenceScore)
	assert.Len(t, result.PrimaryReasons, 3)
	assert.Equal(t, "Coverage capacity £5.0m within appetite (£1.0m-£10.0m)", result.PrimaryReasons[0])
	assert.Equal(t, "Covers all jurisdictions (UK)", result.PrimaryReasons[1])
	assert.Equal(t, "Direct industry match: Technology", result.PrimaryReasons[2])
	assert.Equal(t,
		"Coverage capacity £5.0m within appetite (£1.0m-£10.0m); Covers all jurisdictions (UK)",
		result.Explanation)
}

func TestScoreMatch_ClampsAtFloor(t *testing.T) {
	client := clientRequesting(50_000_000)
	client.Jurisdictions = models.StringList{"France"}
	client.SecurityControls = models.StringList{"Firewall"}
	uw := rangedUnderwriter(1_000_000, 10_000_000)
	uw.Jurisdictions = models.StringList{"Germany"}
	uw.RevenueRangeMin = models.Float64(1_000_000)
	uw.SecurityRequirements = models.StringList{"MFA"}

	result := newTestEngine().ScoreMatch(client, uw)

	assert.Equal(t, 0, result.ConfidenceScore)
	assert.Empty(t, result.PrimaryReasons)
	assert.Equal(t,
		"Score 0/100. Requested £50.0m exceeds maximum £10.0m; Jurisdictions not covered (France)",
		result.Explanation)
}

func TestScoreMatch_ExplanationWithWatch(t *testing.T) {
	client := clientRequesting(5_000_000)
	client.Jurisdictions = models.StringList{"France"}
	uw := rangedUnderwriter(1_000_000, 10_000_000)
	uw.Jurisdictions = models.StringList{"Germany"}

	result := newTestEngine().ScoreMatch(client, uw)

	assert.Equal(t, 50, result.ConfidenceScore)
	assert.Equal(t,
		"Coverage capacity £5.0m within appetite (£1.0m-£10.0m). Watch: Jurisdictions not covered (France)",
		result.Explanation)
}

func TestScoreMatch_ExplanationIsBounded(t *testing.T) {
	var many []string
	for i := 0; i < 40; i++ {
		many = append(many, "Île-de-France région numéro")
	}
	client := clientRequesting(5_000_000)
	client.Jurisdictions = many
	uw := rangedUnderwriter(1_000_000, 10_000_000)
	uw.Jurisdictions = models.StringList{"Île-de-France"}

	result := newTestEngine().ScoreMatch(client, uw)

	assert.LessOrEqual(t, utf8.RuneCountInString(result.Explanation), 200)
	assert.True(t, utf8.ValidString(result.Explanation))
}

func TestScoreMatch_ExplanationCapCountsCharacters(t *testing.T) {
	client := clientRequesting(5_000_000)
	client.Industry = strings.Repeat("a", 150)
	uw := rangedUnderwriter(1_000_000, 10_000_000)
	uw.IndustryClasses = models.StringList{client.Industry}

	result := newTestEngine().ScoreMatch(client, uw)

	// The coverage reason carries three two-byte "£" signs, so bytes exceed runes.
	assert.Equal(t, 200, utf8.RuneCountInString(result.Explanation))
	assert.Greater(t, len(result.Explanation), 200)
	assert.True(t, utf8.ValidString(result.Explanation))
}

func TestScoreMatch_CustomFormatter(t *testing.T) {
	engine := NewEngine(DefaultWeights(), WithFormatter(MoneyFormatter{Symbol: "$"}))
	result := engine.ScoreMatch(clientRequesting(5_000_000), rangedUnderwriter(1_000_000, 10_000_000))

	assert.Equal(t, "Coverage capacity $5.0m within appetite ($1.0m-$10.0m)", result.Explanation)
}

func TestScoreMatch_CustomWeights(t *testing.T) {
	w := DefaultWeights()
	w.Base = 40
	w.CoverageWithinRange = 30

	result := NewEngine(w).ScoreMatch(clientRequesting(5_000_000), rangedUnderwriter(1_000_000, 10_000_000))

	assert.Equal(t, 70, result.ConfidenceScore)
	assert.Equal(t, 40, result.ScoreBreakdown[models.CategoryBase])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abc", 2))
	// Limits count runes, not bytes.
	assert.Equal(t, "a£", truncate("a£b", 2))
	assert.Equal(t, "££££", truncate("£££££", 4))
	assert.Equal(t, "a£b", truncate("a£b", 3))
	assert.Equal(t, "abc", truncate("abc", 0))
}
