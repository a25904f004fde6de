package render

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// trackerDomains is a set of well-known analytics and tracking domains
// blocked during rendering when BlockTrackers is enabled. Ad-slot markup
// itself still renders; only the third-party beacons are cut.
var trackerDomains = map[string]struct{}{
	"google-analytics.com":   {},
	"googletagmanager.com":   {},
	"connect.facebook.net":   {},
	"facebook.net":           {},
	"analytics.twitter.com":  {},
	"ads-twitter.com":        {},
	"static.ads-twitter.com": {},
	"scorecardresearch.com":  {},
	"quantserve.com":         {},
	"hotjar.com":             {},
	"mixpanel.com":           {},
	"segment.io":             {},
	"segment.com":            {},
	"chartbeat.com":          {},
	"chartbeat.net":          {},
	"optimizely.com":         {},
	"demdex.net":             {},
	"krxd.net":               {},
	"bluekai.com":            {},
	"exelator.com":           {},
	"mathtag.com":            {},
	"eyeota.net":             {},
	"agkn.com":               {},
	"rlcdn.com":              {},
	"sharethis.com":          {},
	"addthis.com":            {},
}

// isTrackerDomain checks if a hostname (or any parent domain) is in the blocklist.
func isTrackerDomain(host string) bool {
	host = strings.ToLower(host)
	if _, ok := trackerDomains[host]; ok {
		return true
	}
	// Check parent domains (e.g., "cdn.mixpanel.com" → "mixpanel.com").
	for {
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			break
		}
		host = host[idx+1:]
		if _, ok := trackerDomains[host]; ok {
			return true
		}
	}
	return false
}

// setupHijack installs a request interceptor that blocks font loads and
// known tracker domains. Images, stylesheets and scripts always load: the
// census depends on the page initialising exactly as it would for a visitor.
//
// Returns the running HijackRouter so the caller can defer router.Stop().
// Returns nil when blocking is disabled.
func setupHijack(page *rod.Page, blockTrackers bool) *rod.HijackRouter {
	if !blockTrackers {
		return nil
	}

	router := page.HijackRequests()

	// Pattern "*" + empty resourceType = intercept ALL requests, then
	// decide per-request whether to block or continue.
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if ctx.Request.Type() == proto.NetworkResourceTypeFont {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}

		if u, err := url.Parse(ctx.Request.URL().String()); err == nil {
			if isTrackerDomain(u.Hostname()) {
				ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}

		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	// It will exit when router.Stop() is called.
	go router.Run()

	return router
}
