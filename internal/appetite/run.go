// internal/appetite/run.go
package appetite

import (
	"context"

	"golang.org/x/sync/errgroup"

	"appetite-workers/internal/models"
)

// Run is the outcome of matching one client against a candidate set.
type Run struct {
	TopMatches     []models.MatchResult `json:"top_matches"`
	NearestMisses  []models.MatchResult `json:"nearest_misses"`
	TotalEvaluated int                  `json:"total_evaluated"`
	// Excluded counts candidates dropped because they scored 0.
	Excluded int `json:"excluded_count"`
	// Scored holds every result with a non-zero score, ranked.
	Scored []models.MatchResult `json:"-"`
}

// MatchAll scores every candidate, drops zero scores and partitions the rest.
// The only error returned is ctx's, when it is cancelled mid-run.
func (e *Engine) MatchAll(ctx context.Context, client models.ClientProfile, appetites []models.UnderwriterAppetite) (Run, error) {
	results, err := e.scoreAll(ctx, client, appetites)
	if err != nil {
		return Run{}, err
	}

	kept := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.ConfidenceScore > ScoreFloor {
			kept = append(kept, r)
		}
	}

	p := RankAndPartition(kept, e.rules)
	return Run{
		TopMatches:     p.TopMatches,
		NearestMisses:  p.NearestMisses,
		TotalEvaluated: len(appetites),
		Excluded:       len(results) - len(kept),
		Scored:         Rank(kept),
	}, nil
}

func (e *Engine) scoreAll(ctx context.Context, client models.ClientProfile, appetites []models.UnderwriterAppetite) ([]models.MatchResult, error) {
	results := make([]models.MatchResult, len(appetites))

	if e.parallelThreshold <= 0 || len(appetites) <= e.parallelThreshold {
		for i := range appetites {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = e.ScoreMatch(client, appetites[i])
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}
	for i := range appetites {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.ScoreMatch(client, appetites[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
