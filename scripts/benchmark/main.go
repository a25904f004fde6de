// Benchmark harness: audits a handful of real pages through a running
// PagePulse instance and compares rendered vs static census timings and
// scores. Results land in a JSON file for diffing between revisions.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "PagePulse API base URL")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering different page weights.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"Complex", "https://github.com/go-rod/rod"},
}

// structureResponse mirrors the slice of the API response the benchmark needs.
type structureResponse struct {
	Mode string `json:"mode"`
	ASP  struct {
		Overall struct {
			Score int    `json:"score"`
			Label string `json:"label"`
		} `json:"overall"`
	} `json:"asp"`
	Counts struct {
		Sections struct {
			Total int `json:"total"`
		} `json:"sections"`
		Media struct {
			Images int `json:"images"`
		} `json:"media"`
	} `json:"counts"`
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// result is one averaged label+mode measurement.
type result struct {
	Label    string  `json:"label"`
	URL      string  `json:"url"`
	Mode     string  `json:"mode"`
	Runs     int     `json:"runs"`
	Failures int     `json:"failures"`
	AvgMs    int64   `json:"avg_ms"`
	Score    int     `json:"score"`
	Sections int     `json:"sections"`
	Images   int     `json:"images"`
	ScoreLbl string  `json:"score_label"`
	AvgSec   float64 `json:"avg_sec"`
}

func main() {
	flag.Parse()
	client := &http.Client{Timeout: 3 * time.Minute}

	var results []result
	for _, tu := range testURLs {
		for _, mode := range []string{"rendered-dom", "static"} {
			r := benchmark(client, tu.Label, tu.URL, mode)
			results = append(results, r)
			fmt.Printf("done: %-8s %-12s avg=%dms score=%d\n", tu.Label, mode, r.AvgMs, r.Score)
		}
	}

	printTable(results)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal results: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("results written to %s\n", *output)
}

func benchmark(client *http.Client, label, target, mode string) result {
	r := result{Label: label, URL: target, Mode: mode, Runs: *runs}

	var totalMs int64
	for i := 0; i < *runs; i++ {
		start := time.Now()
		resp, err := fetchStructure(client, target, mode)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s (%s) run %d: %v\n", label, mode, i+1, err)
			r.Failures++
			continue
		}
		totalMs += elapsed
		r.Score = resp.ASP.Overall.Score
		r.ScoreLbl = resp.ASP.Overall.Label
		r.Sections = resp.Counts.Sections.Total
		r.Images = resp.Counts.Media.Images
	}

	if ok := *runs - r.Failures; ok > 0 {
		r.AvgMs = totalMs / int64(ok)
		r.AvgSec = float64(r.AvgMs) / 1000
	}
	return r
}

func fetchStructure(client *http.Client, target, mode string) (*structureResponse, error) {
	q := url.Values{}
	q.Set("url", target)
	q.Set("mode", mode)

	resp, err := client.Get(*apiURL + "/api/asp-recommendations?" + q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("HTTP %d: [%s] %s", resp.StatusCode, apiErr.Code, apiErr.Error)
		}
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var sr structureResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &sr, nil
}

func printTable(results []result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tMODE\tAVG\tSCORE\tSECTIONS\tIMAGES\tFAILURES")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%dms\t%d (%s)\t%d\t%d\t%d/%d\n",
			r.Label, r.Mode, r.AvgMs, r.Score, r.ScoreLbl, r.Sections, r.Images, r.Failures, r.Runs)
	}
	w.Flush()
}
