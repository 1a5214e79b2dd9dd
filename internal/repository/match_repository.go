// internal/repository/match_repository.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"appetite-workers/internal/models"

	"github.com/lib/pq"
)

const insertMatchQuery = `INSERT INTO appetite_matches (
	run_id, quote_id, carrier_id, confidence_score, coverage_fit, jurisdiction_fit,
	industry_fit, capacity_fit_diff, exclusions_hit, primary_reasons, explanation,
	score_breakdown, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const listMatchesByQuoteQuery = `SELECT run_id, quote_id, carrier_id, confidence_score, coverage_fit,
	jurisdiction_fit, industry_fit, capacity_fit_diff, exclusions_hit, primary_reasons,
	explanation, score_breakdown, created_at
FROM appetite_matches
WHERE quote_id = $1
ORDER BY confidence_score DESC, id`

// MatchRepository persists top matches in appetite_matches.
type MatchRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db, now: time.Now}
}

// SaveTopMatches writes one row per match in a single transaction and returns
// the number of rows written.
func (r *MatchRepository) SaveTopMatches(ctx context.Context, runID, quoteID string, matches []models.MatchResult) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", ErrMatchPersistFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertMatchQuery)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare: %v", ErrMatchPersistFailed, err)
	}
	defer stmt.Close()

	createdAt := r.now().UTC()
	for _, m := range matches {
		breakdown, err := json.Marshal(m.ScoreBreakdown)
		if err != nil {
			return 0, fmt.Errorf("%w: breakdown for %s: %v", ErrMatchPersistFailed, m.UnderwriterID, err)
		}

		var diff sql.NullFloat64
		if m.CapacityFitDiff != nil {
			diff = sql.NullFloat64{Float64: *m.CapacityFitDiff, Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			runID, quoteID, m.UnderwriterID, m.ConfidenceScore, string(m.CoverageFit), m.JurisdictionFit,
			string(m.IndustryFit), diff, pq.Array(nonNil(m.ExclusionsHit)), pq.Array(nonNil(m.PrimaryReasons)),
			m.Explanation, string(breakdown), createdAt,
		)
		if err != nil {
			return 0, fmt.Errorf("%w: insert %s: %v", ErrMatchPersistFailed, m.UnderwriterID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrMatchPersistFailed, err)
	}
	return len(matches), nil
}

// ListByQuote returns persisted matches for a quote, highest score first.
func (r *MatchRepository) ListByQuote(ctx context.Context, quoteID string) ([]models.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, listMatchesByQuoteQuery, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", quoteID, err)
	}
	defer rows.Close()

	records := []models.MatchRecord{}
	for rows.Next() {
		var (
			rec                    models.MatchRecord
			coverageFit, industry  string
			diff                   sql.NullFloat64
			exclusionsHit, reasons []string
			breakdown              []byte
		)
		err := rows.Scan(
			&rec.RunID, &rec.QuoteID, &rec.UnderwriterID, &rec.ConfidenceScore, &coverageFit,
			&rec.JurisdictionFit, &industry, &diff, pq.Array(&exclusionsHit), pq.Array(&reasons),
			&rec.Explanation, &breakdown, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}

		rec.CoverageFit = models.CoverageFit(coverageFit)
		rec.IndustryFit = models.IndustryFit(industry)
		rec.CapacityFitDiff = nullableFloat(diff)
		rec.ExclusionsHit = nonNil(exclusionsHit)
		rec.PrimaryReasons = nonNil(reasons)
		if err := json.Unmarshal(breakdown, &rec.ScoreBreakdown); err != nil {
			return nil, fmt.Errorf("decode score breakdown: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", quoteID, err)
	}
	return records, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
