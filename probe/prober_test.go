package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/pagepulse/config"
)

func testProber(concurrency int) *Prober {
	return New(config.ProbeConfig{
		Concurrency:   concurrency,
		MaxCandidates: 40,
		Timeout:       5 * time.Second,
	}, nil)
}

func TestSize_HeadContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "54321")
			w.WriteHeader(http.StatusOK)
			return
		}
		t.Errorf("unexpected %s request after successful HEAD", r.Method)
	}))
	defer srv.Close()

	n, err := testProber(1).Size(context.Background(), srv.URL+"/hero.jpg")
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if n != 54321 {
		t.Errorf("size = %d, want 54321", n)
	}
}

func TestSize_ContentRangeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			// No Content-Length: force the chain past step 1.
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			if r.Header.Get("Range") != "bytes=0-0" {
				t.Errorf("missing single-byte range header, got %q", r.Header.Get("Range"))
			}
			w.Header().Set("Content-Range", "bytes 0-0/987654")
			w.WriteHeader(http.StatusPartialContent)
			fmt.Fprint(w, "x")
		}
	}))
	defer srv.Close()

	n, err := testProber(1).Size(context.Background(), srv.URL+"/banner.png")
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if n != 987654 {
		t.Errorf("size = %d, want 987654 from Content-Range total", n)
	}
}

func TestSize_BodyLengthLastResort(t *testing.T) {
	payload := strings.Repeat("a", 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		// Ignores the Range header, no Content-Range, chunked body.
		w.Header().Set("Transfer-Encoding", "chunked")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	n, err := testProber(1).Size(context.Background(), srv.URL+"/img.webp")
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if n != int64(len(payload)) {
		t.Errorf("size = %d, want %d (consumed body length)", n, len(payload))
	}
}

func TestSizeAll_PartialFailuresAbsorbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close() // abrupt failure for this candidate only
			}
			return
		}
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	urls := []string{
		srv.URL + "/a.jpg",
		srv.URL + "/broken.jpg",
		srv.URL + "/b.jpg",
	}

	results := testProber(2).SizeAll(context.Background(), urls)
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results[0].OK || !results[2].OK {
		t.Errorf("healthy candidates failed: %+v", results)
	}
	if results[1].OK {
		t.Errorf("broken candidate reported OK: %+v", results[1])
	}
}

func TestSizeAll_BoundedConcurrency(t *testing.T) {
	var current, peak atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		current.Add(-1)

		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/img-%d.jpg", srv.URL, i)
	}

	testProber(3).SizeAll(context.Background(), urls)

	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrent probes = %d, want <= 3", p)
	}
}

func TestSizeAll_CapsCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(config.ProbeConfig{Concurrency: 2, MaxCandidates: 5, Timeout: time.Second}, nil)

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/%d.jpg", srv.URL, i)
	}

	results := p.SizeAll(context.Background(), urls)
	if len(results) != 5 {
		t.Errorf("results = %d, want 5 (candidate cap)", len(results))
	}
}

func TestTopImages_SortedAndCapped(t *testing.T) {
	results := []Result{
		{URL: "https://cdn.example.com/small.jpg", Bytes: 1024, OK: true},
		{URL: "https://cdn.example.com/broken.jpg", OK: false},
		{URL: "https://cdn.example.com/huge.jpg?v=2", Bytes: 3 * 1024 * 1024, OK: true},
		{URL: "https://cdn.example.com/mid.png", Bytes: 512 * 1024, OK: true},
		{URL: "https://cdn.example.com/tiny.gif", Bytes: 100, OK: true},
	}

	top := TopImages(results, 3)
	if len(top) != 3 {
		t.Fatalf("top images = %d, want 3", len(top))
	}
	if top[0].Name != "huge.jpg" || top[1].Name != "mid.png" || top[2].Name != "small.jpg" {
		t.Errorf("wrong order: %s, %s, %s", top[0].Name, top[1].Name, top[2].Name)
	}
	if top[0].MB != 3.0 {
		t.Errorf("huge.jpg MB = %v, want 3.0", top[0].MB)
	}
	if top[2].KB != 1.0 {
		t.Errorf("small.jpg KB = %v, want 1.0", top[2].KB)
	}
}

func TestParseContentRangeTotal(t *testing.T) {
	tests := []struct {
		header string
		want   int64
		ok     bool
	}{
		{"bytes 0-0/12345", 12345, true},
		{"bytes 0-0/*", 0, false},
		{"", 0, false},
		{"bytes 0-0", 0, false},
		{"bytes 0-0/-5", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseContentRangeTotal(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseContentRangeTotal(%q) = %d, %v; want %d, %v",
				tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
