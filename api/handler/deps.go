// Package handler implements the HTTP endpoints. Handlers depend on small
// interfaces so tests can stub the heavy subsystems (browser, upstream APIs).
package handler

import (
	"context"

	"github.com/use-agent/pagepulse/fetch"
	"github.com/use-agent/pagepulse/models"
)

// PageSpeedRunner runs one upstream page-speed analysis.
// Satisfied by *pagespeed.Client.
type PageSpeedRunner interface {
	Analyze(ctx context.Context, targetURL string) (*models.AuditReport, error)
}

// CensusRunner runs the structural census. Satisfied by *census.Service.
type CensusRunner interface {
	Run(ctx context.Context, targetURL, mode string) (*models.CensusResult, error)
}

// Summarizer produces the narrative recommendations.
// Satisfied by *llm.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, apiKey string, audit map[string]any, meta *models.PageMeta) (string, []string, error)
}

// PageFetcher retrieves raw markup. Satisfied by *fetch.Client.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string) (*fetch.Result, error)
}

// MetaExtractor extracts page metadata from markup.
// Satisfied by *meta.Extractor.
type MetaExtractor interface {
	Extract(body []byte, sourceURL string) *models.PageMeta
}

// StatsProvider reports renderer pool utilisation.
// Satisfied by *render.Renderer.
type StatsProvider interface {
	Stats() models.PoolStats
}
