package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pagepulse/models"
	"github.com/use-agent/pagepulse/score"
)

// FullAudit returns a handler for GET /api/full-audit: the page-speed
// analysis and the structural census run concurrently, and each half settles
// on its own. One half failing never voids the other; its error is embedded
// in the combined response instead.
func FullAudit(ps PageSpeedRunner, census CensusRunner, thresholds score.Thresholds, defaultTarget string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := resolveTarget(c, defaultTarget)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := models.FullAuditResponse{TargetURL: target}
		ctx := c.Request.Context()

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			report, auditErr := ps.Analyze(ctx, target)
			if auditErr != nil {
				resp.AuditError = halfError(auditErr)
				return
			}
			resp.Audit = report
		}()

		go func() {
			defer wg.Done()
			result, censusErr := census.Run(ctx, target, c.Query("mode"))
			if censusErr != nil {
				resp.StructureError = halfError(censusErr)
				return
			}
			resp.Structure = &models.StructureResponse{
				TargetURL: result.TargetURL,
				FinalURL:  result.FinalURL,
				Counts:    result.Counts,
				ASP:       score.Evaluate(result.Counts, thresholds),
				Mode:      result.Mode,
			}
		}()

		wg.Wait()

		// Both halves failing is a failure; anything else is a 200 with the
		// failed half's error embedded.
		if resp.Audit == nil && resp.Structure == nil {
			c.JSON(http.StatusBadGateway, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
