// internal/api/health_handler.go
package api

import (
	"net/http"
	"time"

	"appetite-workers/internal/common/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	deps    map[string]database.Pinger
	timeout time.Duration
	version string
}

func NewHealthHandler(deps map[string]database.Pinger, timeout time.Duration, version string) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{deps: deps, timeout: timeout, version: version}
}

// Health reports liveness only.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready pings every dependency and returns 503 if any is unreachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	failures := database.CheckAll(c.Request.Context(), h.timeout, h.deps)
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"failures": failures,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
