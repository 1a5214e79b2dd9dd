// internal/api/errors.go
package api

import (
	"appetite-workers/internal/common/errors"

	"github.com/gin-gonic/gin"
)

func errorBody(code, message string, details interface{}) gin.H {
	return gin.H{"error": gin.H{
		"code":    code,
		"message": message,
		"details": details,
	}}
}

// writeError renders err as {"error": {code, message, details}} with the
// status for its category.
func writeError(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatus(stdErr.Code), errorBody(string(stdErr.Code), stdErr.Message, stdErr.Details))
}
