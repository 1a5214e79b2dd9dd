// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"appetite-workers/internal/common/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// NewPostgresFromDB wraps an existing handle, mainly for sqlmock.
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// schemaStatements creates the appetite and match tables when missing.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS underwriter_appetites (
		underwriter_id        TEXT PRIMARY KEY,
		underwriter_name      TEXT NOT NULL,
		insurance_product     TEXT NOT NULL,
		status                TEXT NOT NULL DEFAULT 'pending',
		coverage_amount_min   DOUBLE PRECISION,
		coverage_amount_max   DOUBLE PRECISION,
		jurisdictions         TEXT[] NOT NULL DEFAULT '{}',
		industry_classes      TEXT[] NOT NULL DEFAULT '{}',
		target_sectors        TEXT[] NOT NULL DEFAULT '{}',
		revenue_range_min     DOUBLE PRECISION,
		revenue_range_max     DOUBLE PRECISION,
		security_requirements TEXT[] NOT NULL DEFAULT '{}',
		exclusions            TEXT[] NOT NULL DEFAULT '{}',
		last_updated          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_underwriter_appetites_product
		ON underwriter_appetites (lower(insurance_product), status)`,
	`CREATE TABLE IF NOT EXISTS appetite_matches (
		id                BIGSERIAL PRIMARY KEY,
		run_id            UUID NOT NULL,
		quote_id          TEXT NOT NULL,
		carrier_id        TEXT NOT NULL,
		confidence_score  INTEGER NOT NULL,
		coverage_fit      TEXT NOT NULL,
		jurisdiction_fit  BOOLEAN NOT NULL,
		industry_fit      TEXT NOT NULL,
		capacity_fit_diff DOUBLE PRECISION,
		exclusions_hit    TEXT[] NOT NULL DEFAULT '{}',
		primary_reasons   TEXT[] NOT NULL DEFAULT '{}',
		explanation       TEXT NOT NULL,
		score_breakdown   JSONB NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appetite_matches_quote
		ON appetite_matches (quote_id, confidence_score DESC)`,
}

// EnsureSchema creates the tables used by the appetite repositories.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
