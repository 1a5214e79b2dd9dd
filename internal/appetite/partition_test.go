// internal/appetite/partition_test.go
package appetite

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"testing/quick"

	"appetite-workers/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(scores ...int) []models.MatchResult {
	out := make([]models.MatchResult, len(scores))
	for i, s := range scores {
		out[i] = models.MatchResult{UnderwriterID: fmt.Sprintf("uw-%d", i), ConfidenceScore: s}
	}
	return out
}

func ids(matches []models.MatchResult) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.UnderwriterID
	}
	return out
}

// ==========================
// RankAndPartition Tests
// ==========================

func TestRankAndPartition(t *testing.T) {
	independent := DefaultPartitionRules()
	independent.Policy = PolicyIndependent

	tests := []struct {
		name         string
		scores       []int
		rules        PartitionRules
		expectedTop  []string
		expectedNear []string
	}{
		{
			name:         "top matches capped at three",
			scores:       []int{70, 55, 65, 80, 52, 61},
			rules:        DefaultPartitionRules(),
			expectedTop:  []string{"uw-3", "uw-0", "uw-2"},
			expectedNear: []string{},
		},
		{
			name:         "nearest misses fill remaining slots",
			scores:       []int{70, 55, 52, 40, 51},
			rules:        DefaultPartitionRules(),
			expectedTop:  []string{"uw-0"},
			expectedNear: []string{"uw-1", "uw-2"},
		},
		{
			name:         "independent policy ignores top count",
			scores:       []int{80, 70, 65, 55, 52, 51, 50},
			rules:        independent,
			expectedTop:  []string{"uw-0", "uw-1", "uw-2"},
			expectedNear: []string{"uw-3", "uw-4", "uw-5"},
		},
		{
			name:         "ties keep input order",
			scores:       []int{60, 59, 60, 59, 60},
			rules:        independent,
			expectedTop:  []string{"uw-0", "uw-2", "uw-4"},
			expectedNear: []string{"uw-1", "uw-3"},
		},
		{
			name:         "boundaries",
			scores:       []int{49, 50, 60, 59},
			rules:        DefaultPartitionRules(),
			expectedTop:  []string{"uw-2"},
			expectedNear: []string{"uw-3", "uw-1"},
		},
		{
			name:         "empty input",
			scores:       nil,
			rules:        DefaultPartitionRules(),
			expectedTop:  []string{},
			expectedNear: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := RankAndPartition(scored(tt.scores...), tt.rules)
			assert.Equal(t, tt.expectedTop, ids(p.TopMatches))
			assert.Equal(t, tt.expectedNear, ids(p.NearestMisses))
		})
	}
}

func TestRankAndPartition_DoesNotModifyInput(t *testing.T) {
	in := scored(10, 90, 50)
	RankAndPartition(in, DefaultPartitionRules())
	assert.Equal(t, []string{"uw-0", "uw-1", "uw-2"}, ids(in))
}

func TestProperty_PartitionCompleteness(t *testing.T) {
	rules := DefaultPartitionRules()
	f := func(raw []uint8) bool {
		scores := make([]int, len(raw))
		qualifying := 0
		for i, r := range raw {
			scores[i] = int(r) % 101
			if scores[i] >= 60 {
				qualifying++
			}
		}
		p := RankAndPartition(scored(scores...), rules)

		expectedTop := qualifying
		if expectedTop > 3 {
			expectedTop = 3
		}
		if len(p.TopMatches) != expectedTop {
			return false
		}
		for _, m := range p.TopMatches {
			if m.ConfidenceScore < 60 {
				return false
			}
		}
		for _, m := range p.NearestMisses {
			if m.ConfidenceScore < 50 || m.ConfidenceScore >= 60 {
				return false
			}
		}
		return len(p.TopMatches)+len(p.NearestMisses) <= 3
	}
	assert.NoError(t, quick.Check(f, &quick.Config{MaxCount: 1000, Rand: rand.New(rand.NewSource(7))}))
}

// ==========================
// MatchAll Tests
// ==========================

func candidatePool(n int) []models.UnderwriterAppetite {
	out := make([]models.UnderwriterAppetite, n)
	for i := range out {
		out[i] = models.UnderwriterAppetite{
			UnderwriterID:     fmt.Sprintf("uw-%03d", i),
			CoverageAmountMin: models.Float64(float64(i%7) * 1_000_000),
			CoverageAmountMax: models.Float64(float64(i%7+1) * 2_000_000),
			Jurisdictions:     models.StringList{[]string{"United Kingdom", "Germany", "France"}[i%3]},
		}
		if i%11 == 0 {
			out[i].Exclusions = models.StringList{"software"}
		}
	}
	return out
}

func TestMatchAll_DropsZeroScoresAndPartitions(t *testing.T) {
	client := models.ClientProfile{
		Industry:                "Software",
		RequestedCoverageAmount: 5_000_000,
		Jurisdictions:           models.StringList{"UK"},
	}
	appetites := []models.UnderwriterAppetite{
		{UnderwriterID: "excluded", Exclusions: models.StringList{"software"}},
		{UnderwriterID: "strong", CoverageAmountMax: models.Float64(10_000_000), Jurisdictions: models.StringList{"United Kingdom"}},
		{UnderwriterID: "borderline", Jurisdictions: models.StringList{"United Kingdom", "Germany"}, CoverageAmountMax: models.Float64(1_000_000)},
		{UnderwriterID: "base"},
	}

	run, err := newTestEngine().MatchAll(context.Background(), client, appetites)
	require.NoError(t, err)

	assert.Equal(t, 4, run.TotalEvaluated)
	assert.Equal(t, 1, run.Excluded)
	assert.Equal(t, []string{"strong"}, ids(run.TopMatches))
	assert.Equal(t, []string{"base"}, ids(run.NearestMisses))
	assert.Equal(t, []string{"strong", "base", "borderline"}, ids(run.Scored))
}

func TestMatchAll_EmptyCandidates(t *testing.T) {
	run, err := newTestEngine().MatchAll(context.Background(), clientRequesting(1), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, run.TotalEvaluated)
	assert.NotNil(t, run.TopMatches)
	assert.NotNil(t, run.NearestMisses)
	assert.Empty(t, run.TopMatches)
	assert.Empty(t, run.NearestMisses)
}

func TestMatchAll_ParallelMatchesSequential(t *testing.T) {
	client := models.ClientProfile{
		Industry:                "Software",
		RequestedCoverageAmount: 3_000_000,
		Jurisdictions:           models.StringList{"UK", "Germany"},
	}
	pool := candidatePool(120)

	sequential, err := newTestEngine().MatchAll(context.Background(), client, pool)
	require.NoError(t, err)

	parallel, err := NewEngine(DefaultWeights(), WithParallelism(10, 4)).MatchAll(context.Background(), client, pool)
	require.NoError(t, err)

	if diff := cmp.Diff(sequential, parallel); diff != "" {
		t.Errorf("parallel run differs from sequential (-seq +par):\n%s", diff)
	}
}

func TestMatchAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().MatchAll(ctx, clientRequesting(1), candidatePool(5))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewEngine(DefaultWeights(), WithParallelism(1, 2)).MatchAll(ctx, clientRequesting(1), candidatePool(5))
	assert.ErrorIs(t, err, context.Canceled)
}
