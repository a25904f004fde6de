package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pagepulse/models"
	"github.com/use-agent/pagepulse/score"
)

// Structure returns a handler for GET /api/asp-recommendations: the
// structural census plus the scored findings and their recommendations.
//
// Query parameters:
//
//	url   – audit target (falls back to the configured default)
//	mode  – "rendered-dom" (default) or "static"
func Structure(census CensusRunner, thresholds score.Thresholds, defaultTarget string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := resolveTarget(c, defaultTarget)
		if err != nil {
			respondError(c, err)
			return
		}

		result, err := census.Run(c.Request.Context(), target, c.Query("mode"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.StructureResponse{
			TargetURL: result.TargetURL,
			FinalURL:  result.FinalURL,
			Counts:    result.Counts,
			ASP:       score.Evaluate(result.Counts, thresholds),
			Mode:      result.Mode,
		})
	}
}
