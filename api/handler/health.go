package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pagepulse/models"
)

// Version is the service version reported by /health.
const Version = "0.1.0"

// Health returns a handler for GET /health.
//
// Reports pool utilisation and degrades status when > 80% of pages are
// active. stats may be nil when rendering is disabled; the service is still
// healthy then, just static-only.
func Health(stats StatsProvider, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pool models.PoolStats
		status := "healthy"

		if stats != nil {
			pool = stats.Stats()
			if pool.MaxPages > 0 && pool.ActivePages > int(float64(pool.MaxPages)*0.8) {
				status = "degraded"
			}
		} else {
			status = "healthy-static"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			OK:        true,
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: pool,
			Version:   Version,
		})
	}
}

// Ping returns a handler for GET /api/ping.
func Ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
