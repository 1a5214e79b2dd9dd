// internal/api/routes.go
package api

import (
	"net/http"
	"time"

	"appetite-workers/internal/common/database"
	"appetite-workers/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the HTTP API is built from.
type Dependencies struct {
	Matcher      Matcher
	Matches      MatchReader
	Readiness    map[string]database.Pinger
	ReadyTimeout time.Duration
	Version      string
	Logger       logger.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(SecurityHeadersMiddleware())
	r.Use(gin.Recovery())

	health := NewHealthHandler(deps.Readiness, deps.ReadyTimeout, deps.Version)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	matches := NewMatchHandler(deps.Matcher, deps.Matches, deps.Logger)
	v1 := r.Group("/api/v1")
	{
		v1.POST("/appetite-matches", matches.CreateMatch)
		v1.GET("/quotes/:quoteId/appetite-matches", matches.ListQuoteMatches)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("RESOURCE_NOT_FOUND", "Route not found", c.Request.URL.Path))
	})
	return r
}
