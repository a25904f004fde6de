// Package probe resolves the byte size of remote resources without
// downloading them in full, with bounded concurrency over candidate batches.
package probe

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/pagepulse/config"
)

// Result is one probed candidate. OK is false when every strategy failed;
// such results are excluded from ranking, not treated as zero-byte files.
type Result struct {
	URL   string
	Bytes int64
	OK    bool
}

// Prober issues lightweight size probes against remote resources.
type Prober struct {
	client        *http.Client
	concurrency   int
	maxCandidates int
	timeout       time.Duration
}

// New creates a Prober. Pass nil to use a default http.Client; probes carry
// their own per-request timeout via context.
func New(cfg config.ProbeConfig, client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 6
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 40
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Prober{
		client:        client,
		concurrency:   cfg.Concurrency,
		maxCandidates: cfg.MaxCandidates,
		timeout:       cfg.Timeout,
	}
}

// Size resolves the byte size of one resource via an ordered fallback chain,
// stopping at the first strategy that yields a number:
//
//  1. HEAD request with a numeric Content-Length.
//  2. Range request for the first byte with a Content-Range total.
//  3. Content-Length of the partial response.
//  4. Actual byte length of the (consumed) partial body. This last resort is
//     a known approximation: a server honouring the single-byte range will
//     report 1 byte here.
func (p *Prober) Size(ctx context.Context, target string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// 1. Metadata-only request.
	if n, ok := p.headSize(ctx, target); ok {
		return n, nil
	}

	// 2-4. Partial-content request.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if total, ok := parseContentRangeTotal(resp.Header.Get("Content-Range")); ok {
		return total, nil
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	return int64(len(body)), nil
}

// headSize issues the metadata-only request of the fallback chain.
func (p *Prober) headSize(ctx context.Context, target string) (int64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, false
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength, true
	}
	return 0, false
}

// SizeAll probes up to MaxCandidates URLs with bounded concurrency. A failed
// probe yields Result{OK: false} and never aborts the batch; results are in
// candidate order regardless of completion order.
func (p *Prober) SizeAll(ctx context.Context, urls []string) []Result {
	if len(urls) > p.maxCandidates {
		urls = urls[:p.maxCandidates]
	}

	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			n, err := p.Size(gctx, u)
			if err != nil {
				results[i] = Result{URL: u, OK: false}
				return nil // absorb: one probe failing must not fail the batch
			}
			results[i] = Result{URL: u, Bytes: n, OK: true}
			return nil
		})
	}

	_ = g.Wait() // tasks never return errors
	return results
}

// parseContentRangeTotal extracts the total size from a Content-Range header
// such as "bytes 0-0/12345". An unknown total ("bytes 0-0/*") yields false.
func parseContentRangeTotal(header string) (int64, bool) {
	if header == "" {
		return 0, false
	}
	idx := strings.LastIndexByte(header, '/')
	if idx < 0 {
		return 0, false
	}
	total := strings.TrimSpace(header[idx+1:])
	if total == "" || total == "*" {
		return 0, false
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
