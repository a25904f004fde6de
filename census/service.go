package census

import (
	"context"
	"log/slog"

	"github.com/use-agent/pagepulse/config"
	"github.com/use-agent/pagepulse/fetch"
	"github.com/use-agent/pagepulse/models"
	"github.com/use-agent/pagepulse/probe"
	"github.com/use-agent/pagepulse/render"
)

// Renderer drives one rendered browser visit. Satisfied by *render.Renderer.
type Renderer interface {
	Render(ctx context.Context, targetURL, collectorJS string) (*render.Snapshot, error)
}

// Fetcher retrieves raw markup for the static engine. Satisfied by *fetch.Client.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*fetch.Result, error)
}

// SizeProber resolves image byte sizes. Satisfied by *probe.Prober.
type SizeProber interface {
	SizeAll(ctx context.Context, urls []string) []probe.Result
}

// Service runs the census in either mode and enriches rendered results with
// probed image sizes. renderer may be nil (rendering disabled); the service
// then answers every request in static mode.
type Service struct {
	renderer Renderer
	fetcher  Fetcher
	prober   SizeProber
	cfg      config.CensusConfig
}

// NewService wires the census engines together.
func NewService(renderer Renderer, fetcher Fetcher, prober SizeProber, cfg config.CensusConfig) *Service {
	return &Service{
		renderer: renderer,
		fetcher:  fetcher,
		prober:   prober,
		cfg:      cfg,
	}
}

// RenderedAvailable reports whether the rendered engine can serve requests.
func (s *Service) RenderedAvailable() bool {
	return s.renderer != nil
}

// Run performs a census in the requested mode. mode "" or "rendered-dom"
// uses the browser when available and falls back to static when it is not;
// mode "static" never touches the browser.
func (s *Service) Run(ctx context.Context, targetURL, mode string) (*models.CensusResult, error) {
	switch mode {
	case "", models.ModeRenderedDOM:
		if s.renderer == nil {
			slog.Debug("rendered census unavailable, serving static", "url", targetURL)
			return s.Static(ctx, targetURL)
		}
		return s.Rendered(ctx, targetURL)
	case models.ModeStatic:
		return s.Static(ctx, targetURL)
	default:
		return nil, models.NewAuditError(models.ErrCodeInvalidInput,
			"mode must be rendered-dom or static", nil)
	}
}

// Rendered runs the full browser census: navigate, settle, lazy-scroll,
// evaluate the collector, then probe the collected image URLs and attach the
// largest images per section.
func (s *Service) Rendered(ctx context.Context, targetURL string) (*models.CensusResult, error) {
	if s.renderer == nil {
		return nil, models.NewAuditError(models.ErrCodeRenderDisabled,
			"rendered census requested but the browser is disabled", nil)
	}

	snap, err := s.renderer.Render(ctx, targetURL, CensusJS)
	if err != nil {
		return nil, err
	}

	counts, err := ParseDOMPayload(snap.Payload)
	if err != nil {
		return nil, err
	}

	s.attachTopImages(ctx, counts)

	return &models.CensusResult{
		TargetURL: targetURL,
		FinalURL:  snap.FinalURL,
		Mode:      models.ModeRenderedDOM,
		Counts:    *counts,
	}, nil
}

// Static runs the source-only census over the fetched markup. No scripts
// execute, so counts reflect the served document, and sections stay scalar.
func (s *Service) Static(ctx context.Context, targetURL string) (*models.CensusResult, error) {
	res, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	counts, err := Static(string(res.Body))
	if err != nil {
		return nil, err
	}

	return &models.CensusResult{
		TargetURL: targetURL,
		FinalURL:  res.FinalURL,
		Mode:      models.ModeStatic,
		Counts:    *counts,
	}, nil
}

// attachTopImages probes each section's collected image URLs and keeps the
// heaviest few. Probe failures degrade to an empty list, never to an error:
// image weight is enrichment, not a census prerequisite.
func (s *Service) attachTopImages(ctx context.Context, counts *models.CensusCounts) {
	if s.prober == nil {
		return
	}

	limit := s.cfg.TopImagesPerSection
	if limit <= 0 {
		limit = 3
	}

	for i := range counts.Sections.Breakdown {
		section := &counts.Sections.Breakdown[i]
		if len(section.ImageURLs) == 0 {
			continue
		}
		results := s.prober.SizeAll(ctx, section.ImageURLs)
		section.TopImages = probe.TopImages(results, limit)
	}
}
