// internal/repository/source.go
package repository

import (
	"context"
	"errors"

	"appetite-workers/internal/models"
)

var (
	ErrAppetiteQueryFailed  = errors.New("APPETITE_QUERY_FAILED")
	ErrAppetiteSearchFailed = errors.New("APPETITE_SEARCH_FAILED")
	ErrMatchPersistFailed   = errors.New("MATCH_PERSIST_FAILED")
)

// AppetiteSource provides the processed underwriter appetites for an insurance
// product. An empty product returns every processed appetite. An empty result
// is not an error.
type AppetiteSource interface {
	ListByProduct(ctx context.Context, product string) ([]models.UnderwriterAppetite, error)
}

// Name labels a source in logs and metrics.
func Name(src AppetiteSource) string {
	switch s := src.(type) {
	case *PostgresAppetiteSource:
		return "postgres"
	case *SearchAppetiteSource:
		return "elasticsearch"
	case *CachedAppetiteSource:
		return Name(s.next)
	default:
		return "custom"
	}
}
