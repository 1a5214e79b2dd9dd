// internal/api/match_handler.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"appetite-workers/internal/common/errors"
	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/common/validation"
	"appetite-workers/internal/models"
	"appetite-workers/internal/services"

	"github.com/gin-gonic/gin"
)

// Matcher runs one appetite match.
type Matcher interface {
	Run(ctx context.Context, req services.MatchRequest) (*services.MatchResponse, error)
}

// MatchReader reads persisted matches.
type MatchReader interface {
	ListByQuote(ctx context.Context, quoteID string) ([]models.MatchRecord, error)
}

type MatchHandler struct {
	matcher Matcher
	matches MatchReader
	logger  logger.Logger
	timeout time.Duration
}

func NewMatchHandler(matcher Matcher, matches MatchReader, log logger.Logger) *MatchHandler {
	return &MatchHandler{
		matcher: matcher,
		matches: matches,
		logger:  log,
		timeout: 30 * time.Second,
	}
}

// CreateMatch scores a client profile against supplied or stored appetites.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, errors.NewInvalidMatchInputError("unable to read request body"))
		return
	}

	result, err := validation.MatchRequestValidator.ValidateJSON(raw)
	if err != nil {
		writeError(c, errors.NewInvalidMatchInputError("request body is not valid JSON"))
		return
	}
	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    string(errors.ErrCodeInvalidMatchInput),
			"message": "Request failed schema validation",
			"details": result.Errors,
		}})
		return
	}

	var req services.MatchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(c, errors.NewInvalidMatchInputError(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp, err := h.matcher.Run(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListQuoteMatches returns the persisted top matches for a quote.
func (h *MatchHandler) ListQuoteMatches(c *gin.Context) {
	if h.matches == nil {
		writeError(c, errors.NewDatabaseConnectionFailedError(nil))
		return
	}

	quoteID := c.Param("quoteId")
	records, err := h.matches.ListByQuote(c.Request.Context(), quoteID)
	if err != nil {
		writeError(c, errors.NewDatabaseConnectionFailedError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quote_id": quoteID,
		"matches":  records,
		"count":    len(records),
	})
}
