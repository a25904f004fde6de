package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pagepulse/models"
)

// Recommend returns a handler for POST /api/recommendations: the narrative
// summary of a previously obtained audit, written by the LLM with the
// caller's own API key.
//
// When the audit payload names its target URL, the page is fetched and its
// metadata fed into the prompt; that enrichment is best-effort and never
// fails the request.
func Recommend(summ Summarizer, fetcher PageFetcher, extractor MetaExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewAuditError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}
		if req.APIKey == "" {
			respondError(c, models.NewAuditError(models.ErrCodeInvalidInput, "apiKey is required", nil))
			return
		}
		if len(req.Audit) == 0 {
			respondError(c, models.NewAuditError(models.ErrCodeInvalidInput, "audit payload is required", nil))
			return
		}
		if _, ok := req.Audit["scores"]; !ok {
			respondError(c, models.NewAuditError(models.ErrCodeInvalidInput, "audit payload has no scores", nil))
			return
		}

		pageMeta := extractMeta(c, req.Audit, fetcher, extractor)

		narrative, keywords, err := summ.Summarize(c.Request.Context(), req.APIKey, req.Audit, pageMeta)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SummaryResponse{
			Recommendations:   narrative,
			Extracted:         pageMeta,
			SuggestedKeywords: keywords,
		})
	}
}

// extractMeta fetches and parses the audited page when the payload names it.
func extractMeta(c *gin.Context, audit map[string]any, fetcher PageFetcher, extractor MetaExtractor) *models.PageMeta {
	if fetcher == nil || extractor == nil {
		return nil
	}

	target := auditTarget(audit)
	if target == "" {
		return nil
	}
	if _, err := models.ValidateTarget(target); err != nil {
		return nil
	}

	res, err := fetcher.Fetch(c.Request.Context(), target)
	if err != nil {
		slog.Debug("recommendations: page fetch for metadata failed",
			"url", target, "error", err,
		)
		return nil
	}
	return extractor.Extract(res.Body, res.FinalURL)
}

// auditTarget digs the audited URL out of the loosely-typed payload.
func auditTarget(audit map[string]any) string {
	for _, key := range []string{"finalUrl", "targetUrl", "requestedUrl", "url"} {
		if v, ok := audit[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
