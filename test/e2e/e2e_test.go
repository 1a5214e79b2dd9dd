//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"appetite-workers/internal/common/config"
	"appetite-workers/internal/common/database"
	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/models"
	"appetite-workers/internal/repository"
	"appetite-workers/internal/services"

	notify "appetite-workers/internal/workers/appetite/notify-appetite-matches"
	persist "appetite-workers/internal/workers/appetite/persist-appetite-matches"
	score "appetite-workers/internal/workers/appetite/score-appetite-matches"
)

const e2eProduct = "e2e-cyber"

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	var err error

	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         envOr("ZEEBE_ADDRESS", "localhost:26500"),
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestAppetiteFlowE2E(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.NewZapAdapter(zapLog)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	assertServicesConnectivity(t, ctx, cfg)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.EnsureSchema(ctx))
	seedAppetites(t, ctx, pg)

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	source := repository.NewCachedAppetiteSource(
		repository.NewPostgresAppetiteSource(pg.DB), rdb.Client, time.Minute, log)
	require.NoError(t, source.Invalidate(ctx, e2eProduct))

	svc := services.NewMatchService(cfg.Matching.NewEngine(), source, nil, log)
	quoteID := "Q-E2E-" + uuid.NewString()[:8]

	// 1. score
	scorer := score.NewHandler(&score.Config{Timeout: 30 * time.Second}, svc, nil, log)
	scored, err := scorer.Execute(ctx, &score.Input{
		QuoteID: quoteID,
		ClientProfile: models.ClientProfile{
			Industry:                "Technology",
			RequestedCoverageAmount: 5e6,
			Jurisdictions:           models.StringList{"UK"},
			SecurityControls:        models.StringList{"MFA", "EDR"},
			InsuranceProduct:        e2eProduct,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, scored.TotalEvaluated)
	assert.Equal(t, 1, scored.ExcludedCount)
	require.NotEmpty(t, scored.TopMatches)
	assert.Equal(t, "e2e-uw-strong", scored.TopMatches[0].UnderwriterID)

	// 2. persist
	store := repository.NewMatchRepository(pg.DB)
	persister := persist.NewHandler(&persist.Config{Timeout: 15 * time.Second}, store, nil, log)
	persisted, err := persister.Execute(ctx, &persist.Input{
		RunID:      scored.RunID,
		QuoteID:    quoteID,
		TopMatches: scored.TopMatches,
	})
	require.NoError(t, err)
	assert.Equal(t, len(scored.TopMatches), persisted.PersistedCount)

	records, err := store.ListByQuote(ctx, quoteID)
	require.NoError(t, err)
	require.Len(t, records, len(scored.TopMatches))
	assert.Equal(t, scored.TopMatches[0].ConfidenceScore, records[0].ConfidenceScore)

	// 3. notify with channels disabled
	notifier, err := notify.NewHandler(&notify.Config{Timeout: 10 * time.Second}, nil, nil, nil, log)
	require.NoError(t, err)
	notified, err := notifier.Execute(ctx, &notify.Input{
		RunID:         scored.RunID,
		QuoteID:       quoteID,
		TopMatches:    scored.TopMatches,
		NearestMisses: scored.NearestMisses,
	})
	require.NoError(t, err)
	assert.Equal(t, notify.StatusDisabled, notified.Status)
}

func assertServicesConnectivity(t *testing.T, ctx context.Context, cfg *config.Config) {
	t.Helper()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	assert.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	pg.Close()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	assert.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	rdb.Close()

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		require.NoError(t, err)
		assert.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")
	}

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	assert.NoError(t, err, "Zeebe topology request failed")
}

func seedAppetites(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	t.Helper()

	_, err := pg.DB.ExecContext(ctx, `DELETE FROM underwriter_appetites WHERE insurance_product = $1`, e2eProduct)
	require.NoError(t, err)

	rows := []struct {
		id, name      string
		min, max      float64
		jurisdictions []string
		industries    []string
		security      []string
		exclusions    []string
	}{
		{"e2e-uw-strong", "Strong Fit Syndicate", 1e6, 1e7, []string{"United Kingdom"}, []string{"Technology"}, []string{"MFA"}, nil},
		{"e2e-uw-weak", "Weak Fit Mutual", 2e7, 5e7, []string{"US"}, nil, nil, nil},
		{"e2e-uw-excluded", "Excluding Re", 1e6, 1e7, []string{"UK"}, []string{"Technology"}, nil, []string{"technology"}},
	}
	for _, r := range rows {
		_, err := pg.DB.ExecContext(ctx, `INSERT INTO underwriter_appetites
			(underwriter_id, underwriter_name, insurance_product, status, coverage_amount_min, coverage_amount_max,
			 jurisdictions, industry_classes, security_requirements, exclusions)
			VALUES ($1, $2, $3, 'processed', $4, $5, $6, $7, $8, $9)`,
			r.id, r.name, e2eProduct, r.min, r.max,
			pq.Array(r.jurisdictions), pq.Array(nonNil(r.industries)), pq.Array(nonNil(r.security)), pq.Array(nonNil(r.exclusions)))
		require.NoError(t, err)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func BenchmarkScoreAppetiteMatches(b *testing.B) {
	cfg, err := config.Load()
	if err != nil {
		b.Skip(err)
	}
	svc := services.NewMatchService(cfg.Matching.NewEngine(), nil, nil, logger.NewNoOpLogger())
	handler := score.NewHandler(&score.Config{}, svc, nil, logger.NewNoOpLogger())

	appetites := make([]models.UnderwriterAppetite, 500)
	for i := range appetites {
		appetites[i] = models.UnderwriterAppetite{
			UnderwriterID:     fmt.Sprintf("uw-%d", i),
			CoverageAmountMin: models.Float64(float64(i) * 1e5),
			CoverageAmountMax: models.Float64(float64(i+10) * 1e6),
			Jurisdictions:     models.StringList{"UK", "US"},
			IndustryClasses:   models.StringList{"Technology"},
		}
	}
	input := &score.Input{
		QuoteID: "Q-BENCH",
		ClientProfile: models.ClientProfile{
			Industry:                "Technology",
			RequestedCoverageAmount: 5e6,
			Jurisdictions:           models.StringList{"UK"},
		},
		UnderwriterAppetites: appetites,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.Execute(context.Background(), input)
	}
}
