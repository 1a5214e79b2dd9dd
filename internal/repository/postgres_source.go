// internal/repository/postgres_source.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"appetite-workers/internal/models"

	"github.com/lib/pq"
)

const appetiteColumns = `underwriter_id, underwriter_name, insurance_product, status,
	coverage_amount_min, coverage_amount_max, jurisdictions, industry_classes, target_sectors,
	revenue_range_min, revenue_range_max, security_requirements, exclusions, last_updated`

var (
	listAppetitesByProductQuery = `SELECT ` + appetiteColumns + `
	FROM underwriter_appetites
	WHERE lower(insurance_product) = lower($1) AND status = $2
	ORDER BY last_updated DESC, underwriter_id`

	listAllAppetitesQuery = `SELECT ` + appetiteColumns + `
	FROM underwriter_appetites
	WHERE status = $1
	ORDER BY last_updated DESC, underwriter_id`
)

// PostgresAppetiteSource reads appetites from the underwriter_appetites table.
type PostgresAppetiteSource struct {
	db *sql.DB
}

func NewPostgresAppetiteSource(db *sql.DB) *PostgresAppetiteSource {
	return &PostgresAppetiteSource{db: db}
}

func (s *PostgresAppetiteSource) ListByProduct(ctx context.Context, product string) ([]models.UnderwriterAppetite, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if product == "" {
		rows, err = s.db.QueryContext(ctx, listAllAppetitesQuery, models.AppetiteStatusProcessed)
	} else {
		rows, err = s.db.QueryContext(ctx, listAppetitesByProductQuery, product, models.AppetiteStatusProcessed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppetiteQueryFailed, err)
	}
	defer rows.Close()

	appetites := []models.UnderwriterAppetite{}
	for rows.Next() {
		a, err := scanAppetite(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrAppetiteQueryFailed, err)
		}
		appetites = append(appetites, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppetiteQueryFailed, err)
	}
	return appetites, nil
}

func scanAppetite(rows *sql.Rows) (models.UnderwriterAppetite, error) {
	var (
		a                                    models.UnderwriterAppetite
		covMin, covMax, revMin, revMax       sql.NullFloat64
		jurisdictions, classes, sectors      []string
		securityRequirements, exclusionTerms []string
		lastUpdated                          time.Time
	)

	err := rows.Scan(
		&a.UnderwriterID, &a.UnderwriterName, &a.InsuranceProduct, &a.Status,
		&covMin, &covMax,
		pq.Array(&jurisdictions), pq.Array(&classes), pq.Array(&sectors),
		&revMin, &revMax,
		pq.Array(&securityRequirements), pq.Array(&exclusionTerms),
		&lastUpdated,
	)
	if err != nil {
		return a, err
	}

	a.CoverageAmountMin = nullableFloat(covMin)
	a.CoverageAmountMax = nullableFloat(covMax)
	a.RevenueRangeMin = nullableFloat(revMin)
	a.RevenueRangeMax = nullableFloat(revMax)
	a.Jurisdictions = models.StringList(jurisdictions)
	a.IndustryClasses = models.StringList(classes)
	a.TargetSectors = models.StringList(sectors)
	a.SecurityRequirements = models.StringList(securityRequirements)
	a.Exclusions = models.StringList(exclusionTerms)
	a.LastUpdated = lastUpdated.UTC()
	return a, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float64(v.Float64)
}
