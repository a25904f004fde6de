package census

import (
	"context"
	"errors"
	"testing"

	"github.com/use-agent/pagepulse/config"
	"github.com/use-agent/pagepulse/fetch"
	"github.com/use-agent/pagepulse/models"
	"github.com/use-agent/pagepulse/probe"
	"github.com/use-agent/pagepulse/render"
)

type stubRenderer struct {
	snap *render.Snapshot
	err  error
}

func (s *stubRenderer) Render(_ context.Context, _, _ string) (*render.Snapshot, error) {
	return s.snap, s.err
}

type stubFetcher struct {
	body string
	err  error
}

func (s *stubFetcher) Fetch(_ context.Context, targetURL string) (*fetch.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &fetch.Result{Body: []byte(s.body), FinalURL: targetURL}, nil
}

type stubProber struct {
	sizes map[string]int64
}

func (s *stubProber) SizeAll(_ context.Context, urls []string) []probe.Result {
	results := make([]probe.Result, len(urls))
	for i, u := range urls {
		n, ok := s.sizes[u]
		results[i] = probe.Result{URL: u, Bytes: n, OK: ok}
	}
	return results
}

const domPayload = `{
	"sections": {
		"total": 2,
		"breakdown": [
			{"index": 0, "id": "hero", "images": 2, "videos": 0, "iframes": 0, "carousels": 1,
			 "carouselDetail": [{"type": "swiper", "slides": 4}],
			 "imageUrls": ["https://cdn.example.com/big.jpg", "https://cdn.example.com/small.jpg", "https://cdn.example.com/broken.jpg"]},
			{"index": 1, "images": 0, "videos": 1, "iframes": 0, "carousels": 0}
		]
	},
	"carousels": {"count": 1, "slidesPerCarousel": [4], "slidesTotal": 99, "type": "swiper"},
	"testimonials": {"count": 1, "itemsPerBlock": [3], "itemsTotal": 0},
	"libraries": {"containers": 1, "types": {"news": 1, "products": 0, "video": 0, "sponsor": 0}, "typesTotal": 7},
	"media": {"images": 2, "videos": 1, "iframes": 0},
	"adSpace": {"skyscraperLeft": 1, "skyscraperRight": 1, "skyscraperTop": 0, "skyscraperBottom": 0, "total": 42}
}`

func TestRendered_ParsesPayloadAndAttachesTopImages(t *testing.T) {
	svc := NewService(
		&stubRenderer{snap: &render.Snapshot{FinalURL: "https://example.com/", Payload: []byte(domPayload)}},
		&stubFetcher{},
		&stubProber{sizes: map[string]int64{
			"https://cdn.example.com/big.jpg":   500_000,
			"https://cdn.example.com/small.jpg": 10_000,
		}},
		config.CensusConfig{TopImagesPerSection: 3},
	)

	res, err := svc.Rendered(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Rendered: %v", err)
	}
	if res.Mode != models.ModeRenderedDOM {
		t.Errorf("mode = %q", res.Mode)
	}
	if res.FinalURL != "https://example.com/" {
		t.Errorf("final URL = %q", res.FinalURL)
	}

	hero := res.Counts.Sections.Breakdown[0]
	if len(hero.TopImages) != 2 {
		t.Fatalf("top images = %d, want 2 (failed probe excluded)", len(hero.TopImages))
	}
	if hero.TopImages[0].Name != "big.jpg" {
		t.Errorf("largest image = %q, want big.jpg", hero.TopImages[0].Name)
	}
	if len(res.Counts.Sections.Breakdown[1].TopImages) != 0 {
		t.Errorf("section without images got top images")
	}
}

func TestRendered_RecomputesDerivedTotals(t *testing.T) {
	svc := NewService(
		&stubRenderer{snap: &render.Snapshot{FinalURL: "https://example.com/", Payload: []byte(domPayload)}},
		&stubFetcher{}, nil, config.CensusConfig{},
	)

	res, err := svc.Rendered(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Rendered: %v", err)
	}
	c := res.Counts
	if c.Carousels.SlidesTotal != 4 {
		t.Errorf("slides total = %d, want 4 (payload claimed 99)", c.Carousels.SlidesTotal)
	}
	if c.Testimonials.ItemsTotal != 3 {
		t.Errorf("testimonial items = %d, want 3", c.Testimonials.ItemsTotal)
	}
	if c.Libraries.TypesTotal != 1 {
		t.Errorf("library types total = %d, want 1", c.Libraries.TypesTotal)
	}
	if c.AdSpace.Total != 2 {
		t.Errorf("ad total = %d, want 2 (payload claimed 42)", c.AdSpace.Total)
	}
}

func TestRendered_DisabledBrowser(t *testing.T) {
	svc := NewService(nil, &stubFetcher{}, nil, config.CensusConfig{})

	_, err := svc.Rendered(context.Background(), "https://example.com")
	var auditErr *models.AuditError
	if !errors.As(err, &auditErr) || auditErr.Code != models.ErrCodeRenderDisabled {
		t.Fatalf("error = %v, want render-disabled", err)
	}
}

func TestRun_ModeSelection(t *testing.T) {
	static := `<html><body><section></section></body></html>`
	svc := NewService(
		&stubRenderer{snap: &render.Snapshot{FinalURL: "https://example.com/", Payload: []byte(domPayload)}},
		&stubFetcher{body: static}, nil, config.CensusConfig{},
	)

	res, err := svc.Run(context.Background(), "https://example.com", models.ModeStatic)
	if err != nil {
		t.Fatalf("Run static: %v", err)
	}
	if res.Mode != models.ModeStatic || res.Counts.Sections.Total != 1 {
		t.Errorf("static run = mode %q, sections %d", res.Mode, res.Counts.Sections.Total)
	}

	res, err = svc.Run(context.Background(), "https://example.com", "")
	if err != nil {
		t.Fatalf("Run default: %v", err)
	}
	if res.Mode != models.ModeRenderedDOM {
		t.Errorf("default mode = %q, want rendered", res.Mode)
	}

	if _, err := svc.Run(context.Background(), "https://example.com", "nonsense"); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestRun_FallsBackToStaticWithoutRenderer(t *testing.T) {
	svc := NewService(nil,
		&stubFetcher{body: `<html><body><section></section><section></section></body></html>`},
		nil, config.CensusConfig{},
	)

	res, err := svc.Run(context.Background(), "https://example.com", models.ModeRenderedDOM)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Mode != models.ModeStatic {
		t.Errorf("mode = %q, want static fallback", res.Mode)
	}
	if res.Counts.Sections.Total != 2 {
		t.Errorf("sections = %d, want 2", res.Counts.Sections.Total)
	}
}

func TestStaticService_PropagatesFetchError(t *testing.T) {
	fetchErr := models.NewUpstreamError(models.ErrCodeFetch, "target responded with HTTP 503", 503, nil)
	svc := NewService(nil, &stubFetcher{err: fetchErr}, nil, config.CensusConfig{})

	_, err := svc.Static(context.Background(), "https://example.com")
	var auditErr *models.AuditError
	if !errors.As(err, &auditErr) || auditErr.UpstreamStatus != 503 {
		t.Fatalf("error = %v, want upstream 503 preserved", err)
	}
}
