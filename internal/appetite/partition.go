// internal/appetite/partition.go
package appetite

import (
	"sort"

	"appetite-workers/internal/models"
)

// PartitionPolicy decides how many nearest misses accompany the top matches.
type PartitionPolicy string

const (
	// PolicyFillRemaining only offers nearest misses for the slots top matches left empty.
	PolicyFillRemaining PartitionPolicy = "fill-remaining"
	// PolicyIndependent offers up to MaxSuggestions nearest misses regardless of top matches.
	PolicyIndependent PartitionPolicy = "independent"
)

type PartitionRules struct {
	TopMatchThreshold int             `mapstructure:"top_match_threshold" json:"top_match_threshold"`
	NearMissThreshold int             `mapstructure:"near_miss_threshold" json:"near_miss_threshold"`
	MaxTopMatches     int             `mapstructure:"max_top_matches" json:"max_top_matches"`
	MaxSuggestions    int             `mapstructure:"max_suggestions" json:"max_suggestions"`
	Policy            PartitionPolicy `mapstructure:"policy" json:"policy"`
}

func DefaultPartitionRules() PartitionRules {
	return PartitionRules{
		TopMatchThreshold: 60,
		NearMissThreshold: 50,
		MaxTopMatches:     3,
		MaxSuggestions:    3,
		Policy:            PolicyFillRemaining,
	}
}

type Partition struct {
	TopMatches    []models.MatchResult `json:"top_matches"`
	NearestMisses []models.MatchResult `json:"nearest_misses"`
}

// Rank returns a copy of matches sorted by descending confidence score.
// Ties keep their input order.
func Rank(matches []models.MatchResult) []models.MatchResult {
	ranked := make([]models.MatchResult, len(matches))
	copy(ranked, matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ConfidenceScore > ranked[j].ConfidenceScore
	})
	return ranked
}

// RankAndPartition splits ranked matches into top matches and nearest misses.
// The input slice is not modified.
func RankAndPartition(matches []models.MatchResult, rules PartitionRules) Partition {
	p := Partition{
		TopMatches:    []models.MatchResult{},
		NearestMisses: []models.MatchResult{},
	}

	var near []models.MatchResult
	for _, m := range Rank(matches) {
		switch {
		case m.ConfidenceScore >= rules.TopMatchThreshold:
			if len(p.TopMatches) < rules.MaxTopMatches {
				p.TopMatches = append(p.TopMatches, m)
			}
		case m.ConfidenceScore >= rules.NearMissThreshold:
			near = append(near, m)
		}
	}

	limit := rules.MaxSuggestions
	if rules.Policy != PolicyIndependent {
		limit -= len(p.TopMatches)
	}
	if limit < 0 {
		limit = 0
	}
	if len(near) > limit {
		near = near[:limit]
	}
	p.NearestMisses = append(p.NearestMisses, near...)
	return p
}
