// internal/services/match_service.go
package services

import (
	"context"
	stderrors "errors"
	"time"

	"appetite-workers/internal/appetite"
	"appetite-workers/internal/common/errors"
	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/common/metrics"
	"appetite-workers/internal/common/observability"
	"appetite-workers/internal/models"
	"appetite-workers/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// MatchRequest is one client profile to be matched. A nil UnderwriterAppetites
// means the candidates are loaded from the configured AppetiteSource; an empty
// non-nil slice is matched as given.
type MatchRequest struct {
	QuoteID              string                       `json:"quote_id"`
	ClientProfile        models.ClientProfile         `json:"client_profile"`
	UnderwriterAppetites []models.UnderwriterAppetite `json:"underwriter_appetites"`
}

type MatchResponse struct {
	RunID          string               `json:"run_id"`
	QuoteID        string               `json:"quote_id,omitempty"`
	TopMatches     []models.MatchResult `json:"top_matches"`
	NearestMisses  []models.MatchResult `json:"nearest_misses"`
	TotalEvaluated int                  `json:"total_evaluated"`
	ExcludedCount  int                  `json:"excluded_count"`
	Source         string               `json:"source"`
	MatchedAt      time.Time            `json:"matched_at"`
}

const sourceRequest = "request"

// MatchService runs the scoring engine for a request and records the run.
type MatchService struct {
	engine *appetite.Engine
	source repository.AppetiteSource
	obs    *observability.Observability
	logger logger.Logger
	newID  func() string
	now    func() time.Time
}

func NewMatchService(engine *appetite.Engine, source repository.AppetiteSource, obs *observability.Observability, log logger.Logger) *MatchService {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &MatchService{
		engine: engine,
		source: source,
		obs:    obs,
		logger: log,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

func (s *MatchService) Run(ctx context.Context, req MatchRequest) (resp *MatchResponse, err error) {
	start := time.Now()
	runID := s.newID()
	source := sourceRequest
	if req.UnderwriterAppetites == nil && s.source != nil {
		source = repository.Name(s.source)
	}

	ctx, span := s.obs.StartSpan(ctx, "appetite.match",
		attribute.String("run_id", runID),
		attribute.String("quote_id", req.QuoteID),
		attribute.String("source", source),
	)
	defer func() {
		status := "completed"
		if err != nil {
			status = "failed"
		}
		metrics.MatchRuns.WithLabelValues(source, status).Inc()
		topMatches := 0
		if resp != nil {
			topMatches = len(resp.TopMatches)
		}
		s.obs.RecordMatchRun(ctx, source, status, time.Since(start), topMatches)
		observability.EndSpan(span, err)
	}()

	if err := req.Validate(); err != nil {
		return nil, errors.NewInvalidMatchInputError(err.Error())
	}

	appetites, err := s.candidates(ctx, req)
	if err != nil {
		return nil, err
	}

	run, err := s.engine.MatchAll(ctx, req.ClientProfile, appetites)
	if err != nil {
		return nil, errors.NewMatchTimeoutError(err)
	}

	metrics.MatchCandidatesEvaluated.Add(float64(run.TotalEvaluated))
	metrics.MatchExclusionsHit.Add(float64(run.Excluded))
	for _, r := range run.Scored {
		metrics.MatchConfidenceScore.Observe(float64(r.ConfidenceScore))
	}
	span.SetAttributes(
		attribute.Int("total_evaluated", run.TotalEvaluated),
		attribute.Int("top_matches", len(run.TopMatches)),
	)

	s.logger.Info("appetite match completed", map[string]interface{}{
		"runId":          runID,
		"quoteId":        req.QuoteID,
		"source":         source,
		"totalEvaluated": run.TotalEvaluated,
		"excluded":       run.Excluded,
		"topMatches":     len(run.TopMatches),
		"nearestMisses":  len(run.NearestMisses),
		"duration_ms":    time.Since(start).Milliseconds(),
	})

	return &MatchResponse{
		RunID:          runID,
		QuoteID:        req.QuoteID,
		TopMatches:     run.TopMatches,
		NearestMisses:  run.NearestMisses,
		TotalEvaluated: run.TotalEvaluated,
		ExcludedCount:  run.Excluded,
		Source:         source,
		MatchedAt:      s.now().UTC(),
	}, nil
}

func (s *MatchService) candidates(ctx context.Context, req MatchRequest) ([]models.UnderwriterAppetite, error) {
	if req.UnderwriterAppetites != nil || s.source == nil {
		return req.UnderwriterAppetites, nil
	}

	product := req.ClientProfile.InsuranceProduct
	appetites, err := s.source.ListByProduct(ctx, product)
	if err == nil {
		return appetites, nil
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled):
		return nil, errors.NewMatchTimeoutError(err)
	case stderrors.Is(err, repository.ErrAppetiteSearchFailed):
		return nil, errors.NewAppetiteSearchFailedError(product, err)
	default:
		return nil, errors.NewAppetiteLookupFailedError(product, err)
	}
}
