// Package api wires the HTTP surface: routes, middleware chain, and the 404
// fallback.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pagepulse/api/handler"
	"github.com/use-agent/pagepulse/api/middleware"
	"github.com/use-agent/pagepulse/config"
	"github.com/use-agent/pagepulse/score"
)

// Deps bundles the subsystems the routes need.
type Deps struct {
	PageSpeed  handler.PageSpeedRunner
	Census     handler.CensusRunner
	Summarizer handler.Summarizer
	Fetcher    handler.PageFetcher
	Extractor  handler.MetaExtractor

	// Stats is nil when rendering is disabled.
	Stats handler.StatsProvider

	Thresholds score.Thresholds
	StartTime  time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	API:     RateLimit
//
// Health endpoint is intentionally outside the rate limit so monitoring
// probes always work.
func NewRouter(deps Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/health", handler.Health(deps.Stats, deps.StartTime))

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.RateLimit(cfg.RateLimit))

	apiGroup.GET("/ping", handler.Ping())
	apiGroup.GET("/audit", handler.Audit(deps.PageSpeed, cfg.Census.DefaultTarget))
	apiGroup.GET("/asp-recommendations", handler.Structure(deps.Census, deps.Thresholds, cfg.Census.DefaultTarget))
	apiGroup.GET("/full-audit", handler.FullAudit(deps.PageSpeed, deps.Census, deps.Thresholds, cfg.Census.DefaultTarget))
	apiGroup.POST("/recommendations", handler.Recommend(deps.Summarizer, deps.Fetcher, deps.Extractor))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Not found: %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	return r
}
