package render

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/pagepulse/models"
)

// Snapshot is the outcome of one rendered visit: the settled markup, the
// post-redirect URL, and the collector's JSON payload.
type Snapshot struct {
	HTML     string
	FinalURL string
	Payload  []byte
}

// Render is the full rendered-visit cycle.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard          – hard deadline on the entire operation
//  2. Acquire page           – borrow a tab from the pool (or create one)
//  3. DEFER: cleanup         – about:blank + return to pool (leak prevention)
//  4. Stealth injection      – mask navigator.webdriver etc. (before navigation!)
//  5. Hijack mount           – block fonts/trackers (before navigation!)
//  6. Context binding        – propagate timeout to all Rod operations
//  7. Navigate               – triggers page load
//  8. Wait                   – DOM stable
//  9. Lazy scroll            – step to the bottom so visibility-gated widgets
//     initialise, then return to the top
//  10. Collect               – evaluate the collector + page.HTML()
//
// Why this order matters:
//   - Steps 4-5 MUST happen before step 7: stealth JS and resource blocking only
//     take effect for navigations that happen after they are installed.
//   - Step 9 MUST run before step 10: slider libraries inject their loop clones
//     on initialisation, and the collector's de-duplication rules assume the
//     post-initialisation DOM.
//   - Step 3's about:blank uses the ORIGINAL page reference (without request
//     context), so cleanup succeeds even if the request context has expired.
func (r *Renderer) Render(ctx context.Context, targetURL, collectorJS string) (*Snapshot, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, r.censusCfg.NavigationTimeout)
	defer cancel()

	// ── 2. Acquire page from pool ─────────────────────────────────────
	r.activePages.Add(1)
	defer r.activePages.Add(-1)

	page, acquireErr := r.pagePool.Get(func() (*rod.Page, error) {
		return r.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewAuditError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	// ── 3. CRITICAL DEFER: prevent DOM memory leak + guarantee pool return
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank",
				"error", navErr,
			)
		}
		r.pagePool.Put(page)
	}()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"error", evalErr,
		)
	}

	// ── 4b. Plausible Referer ────────────────────────────────────────
	if u, parseErr := url.Parse(targetURL); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{
				"Referer": "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()),
			}),
		}.Call(page)
	}

	// ── 5. Mount hijack router (fonts + trackers; images are never blocked,
	// the census needs the browser's responsive source selection) ─────
	router := setupHijack(page, r.browserCfg.BlockTrackers)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 6. Bind request context to page ───────────────────────────────
	p := page.Context(ctx)

	// ── 7. Navigate ───────────────────────────────────────────────────
	if navErr := p.Navigate(targetURL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	// ── 8. Wait strategy ──────────────────────────────────────────────
	// NOTE: WaitRequestIdle uses the Fetch domain which conflicts with
	// HijackRequests on Chromium 145+. Use WaitDOMStable instead.
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr,
		)
	}

	// ── 9. Lazy scroll ────────────────────────────────────────────────
	if scrollErr := r.lazyScroll(ctx, p); scrollErr != nil {
		return nil, scrollErr
	}

	// ── 10. Collect ───────────────────────────────────────────────────
	res, evalErr := p.Eval(collectorJS)
	if evalErr != nil {
		return nil, categorizeError(evalErr, "collector evaluation failed")
	}
	payload := []byte(res.Value.Str())

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = targetURL
	}

	return &Snapshot{
		HTML:     rawHTML,
		FinalURL: finalURL,
		Payload:  payload,
	}, nil
}

// lazyScroll steps the viewport to the bottom of the document and back.
// Sliders, embeds and below-the-fold images commonly initialise on an
// IntersectionObserver, so counting without scrolling undercounts.
func (r *Renderer) lazyScroll(ctx context.Context, p *rod.Page) error {
	steps := r.censusCfg.ScrollSteps
	if steps <= 0 {
		return nil
	}

	for i := 1; i <= steps; i++ {
		_, _ = p.Eval(`(step, total) => {
			window.scrollTo(0, document.body.scrollHeight * step / total);
		}`, i, steps)

		select {
		case <-ctx.Done():
			return categorizeError(ctx.Err(), "lazy scroll interrupted")
		case <-time.After(r.censusCfg.ScrollPause):
		}
	}

	// Back to the top so fixed headers and top-anchored widgets settle in
	// their resting state before extraction.
	_, _ = p.Eval(`() => window.scrollTo(0, 0)`)
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("post-scroll DOM did not converge, proceeding",
			"error", stableErr,
		)
	}
	return nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed AuditErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.AuditError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewAuditError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewAuditError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewAuditError(models.ErrCodeNavigation, msg, err)
	}
}
