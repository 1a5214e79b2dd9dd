// internal/repository/postgres_source_test.go
package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appetiteColumnNames = []string{
	"underwriter_id", "underwriter_name", "insurance_product", "status",
	"coverage_amount_min", "coverage_amount_max", "jurisdictions", "industry_classes", "target_sectors",
	"revenue_range_min", "revenue_range_max", "security_requirements", "exclusions", "last_updated",
}

func TestPostgresAppetiteSource_ListByProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(appetiteColumnNames).
		AddRow("uw-1", "Harbour Re", "Cyber", "processed", 1e6, 1e7, "{UK,US}", "{Technology}", "{}", nil, nil, "{MFA,EDR}", "{crypto}", updated).
		AddRow("uw-2", "Northgate", "cyber", "processed", nil, nil, "{}", "{}", "{Retail}", 0.0, 5e7, "{}", "{}", updated.Add(-time.Hour))

	mock.ExpectQuery(`FROM underwriter_appetites\s+WHERE lower\(insurance_product\) = lower\(\$1\) AND status = \$2`).
		WithArgs("Cyber", "processed").
		WillReturnRows(rows)

	appetites, err := NewPostgresAppetiteSource(db).ListByProduct(context.Background(), "Cyber")
	require.NoError(t, err)
	require.Len(t, appetites, 2)

	first := appetites[0]
	assert.Equal(t, "uw-1", first.UnderwriterID)
	require.NotNil(t, first.CoverageAmountMin)
	assert.Equal(t, 1e6, *first.CoverageAmountMin)
	assert.Nil(t, first.RevenueRangeMin)
	assert.Equal(t, []string{"UK", "US"}, []string(first.Jurisdictions))
	assert.Equal(t, []string{"MFA", "EDR"}, []string(first.SecurityRequirements))
	assert.Equal(t, updated, first.LastUpdated)

	second := appetites[1]
	assert.Nil(t, second.CoverageAmountMax)
	require.NotNil(t, second.RevenueRangeMin)
	assert.Equal(t, 0.0, *second.RevenueRangeMin)
	assert.Empty(t, second.IndustryClasses)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppetiteSource_AllProducts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM underwriter_appetites\s+WHERE status = \$1`).
		WithArgs("processed").
		WillReturnRows(sqlmock.NewRows(appetiteColumnNames))

	appetites, err := NewPostgresAppetiteSource(db).ListByProduct(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, appetites)
	assert.Empty(t, appetites)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppetiteSource_Errors(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM underwriter_appetites").WillReturnError(errors.New("connection reset"))

		_, err = NewPostgresAppetiteSource(db).ListByProduct(context.Background(), "Cyber")
		assert.ErrorIs(t, err, ErrAppetiteQueryFailed)
	})

	t.Run("row error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(appetiteColumnNames).
			AddRow("uw-1", "A", "Cyber", "processed", nil, nil, "{}", "{}", "{}", nil, nil, "{}", "{}", time.Now()).
			RowError(0, errors.New("bad row"))
		mock.ExpectQuery("FROM underwriter_appetites").WillReturnRows(rows)

		_, err = NewPostgresAppetiteSource(db).ListByProduct(context.Background(), "Cyber")
		assert.ErrorIs(t, err, ErrAppetiteQueryFailed)
	})
}
