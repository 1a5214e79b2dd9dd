// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"appetite-workers/internal/api"
	"appetite-workers/internal/common/camunda"
	"appetite-workers/internal/common/config"
	"appetite-workers/internal/common/database"
	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/common/observability"
	"appetite-workers/internal/repository"
	"appetite-workers/internal/services"

	notify "appetite-workers/internal/workers/appetite/notify-appetite-matches"
	persist "appetite-workers/internal/workers/appetite/persist-appetite-matches"
	score "appetite-workers/internal/workers/appetite/score-appetite-matches"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(
		zap.String("service", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(cfg.Observability.ServiceName, observability.Options{
		TracingEnabled:   cfg.Observability.TracingEnabled,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
	})
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch (optional) ---
	var es *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", es.Index))
	}

	// --- Matching ---
	source, err := buildCandidateSource(cfg, pg, rdb, es, log)
	if err != nil {
		zapLog.Fatal("candidate source setup failed", zap.Error(err))
	}
	engine := cfg.Matching.NewEngine()
	matchService := services.NewMatchService(engine, source, obs, log)
	matchRepo := repository.NewMatchRepository(pg.DB)
	zapLog.Info("Matching engine ready",
		zap.String("candidateSource", repository.Name(source)),
		zap.Bool("cacheEnabled", cfg.Matching.CacheEnabled),
		zap.String("partitionPolicy", string(cfg.Matching.Partition.Policy)),
	)

	// --- Workers ---
	notifier, err := newNotifyHandler(ctx, cfg, obs, log)
	if err != nil {
		zapLog.Fatal("failed to create notify-appetite-matches handler", zap.Error(err))
	}

	workers := []*camunda.Worker{
		camunda.StartWorker(zeebe.GetClient(), score.TaskType, config.GetWorkerConfig(cfg, score.TaskType),
			score.NewHandler(&score.Config{
				Timeout: config.GetDuration(config.GetWorkerConfig(cfg, score.TaskType).Timeout),
			}, matchService, obs, log).Handle, log),
		camunda.StartWorker(zeebe.GetClient(), persist.TaskType, config.GetWorkerConfig(cfg, persist.TaskType),
			persist.NewHandler(&persist.Config{
				Timeout: config.GetDuration(config.GetWorkerConfig(cfg, persist.TaskType).Timeout),
			}, matchRepo, obs, log).Handle, log),
		camunda.StartWorker(zeebe.GetClient(), notify.TaskType, config.GetWorkerConfig(cfg, notify.TaskType),
			notifier.Handle, log),
	}

	// --- HTTP API, health & metrics ---
	readiness := map[string]database.Pinger{
		"postgres": pg,
		"redis":    rdb,
		"zeebe":    zeebe,
	}
	if es != nil {
		readiness["elasticsearch"] = es
	}
	router := api.NewRouter(api.Dependencies{
		Matcher:      matchService,
		Matches:      matchRepo,
		Readiness:    readiness,
		ReadyTimeout: 2 * time.Second,
		Version:      cfg.App.Version,
		Logger:       log,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if es != nil {
		_ = es.Close()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
