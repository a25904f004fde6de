package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Audit returns a handler for GET /api/audit: one upstream page-speed
// analysis of the target, normalised.
func Audit(ps PageSpeedRunner, defaultTarget string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := resolveTarget(c, defaultTarget)
		if err != nil {
			respondError(c, err)
			return
		}

		report, err := ps.Analyze(c.Request.Context(), target)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}
