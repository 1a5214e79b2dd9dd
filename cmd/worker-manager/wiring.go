// cmd/worker-manager/wiring.go
package main

import (
	"context"
	"fmt"

	"appetite-workers/internal/common/aws"
	"appetite-workers/internal/common/config"
	"appetite-workers/internal/common/database"
	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/common/observability"
	"appetite-workers/internal/repository"

	notify "appetite-workers/internal/workers/appetite/notify-appetite-matches"
)

const searchPageSize = 500

// buildCandidateSource picks the appetite store named by
// matching.candidate_source and wraps it with the Redis cache when enabled.
func buildCandidateSource(cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient, es *database.ElasticsearchClient, log logger.Logger) (repository.AppetiteSource, error) {
	var source repository.AppetiteSource
	switch cfg.Matching.CandidateSource {
	case config.CandidateSourceElasticsearch:
		if es == nil {
			return nil, fmt.Errorf("candidate source %q requires an elasticsearch client", cfg.Matching.CandidateSource)
		}
		source = repository.NewSearchAppetiteSource(es.Client, es.Index, searchPageSize)
	case config.CandidateSourcePostgres, "":
		if pg == nil {
			return nil, fmt.Errorf("candidate source %q requires a postgres client", config.CandidateSourcePostgres)
		}
		source = repository.NewPostgresAppetiteSource(pg.DB)
	default:
		return nil, fmt.Errorf("unknown candidate source %q", cfg.Matching.CandidateSource)
	}

	if cfg.Matching.CacheEnabled && rdb != nil {
		source = repository.NewCachedAppetiteSource(source, rdb.Client, cfg.Matching.CacheDuration(), log)
	}
	return source, nil
}

// newNotifyHandler creates SES and SNS clients only for the enabled channels.
func newNotifyHandler(ctx context.Context, cfg *config.Config, obs *observability.Observability, log logger.Logger) (*notify.Handler, error) {
	n := cfg.Notifications
	ncfg := &notify.Config{
		EmailEnabled:  n.Email.Enabled,
		FromEmail:     n.Email.FromEmail,
		SubjectPrefix: n.Email.SubjectPrefix,
		EventsEnabled: n.Events.Enabled,
		TopicARN:      n.Events.TopicARN,
		Timeout:       config.GetDuration(config.GetWorkerConfig(cfg, notify.TaskType).Timeout),
	}

	var mailer notify.Mailer
	if n.Email.Enabled {
		ses, err := aws.NewSESClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		mailer = ses
	}

	var publisher notify.Publisher
	if n.Events.Enabled {
		sns, err := aws.NewSNSClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		publisher = sns
	}

	return notify.NewHandler(ncfg, mailer, publisher, obs, log)
}
