// Package pagespeed calls the hosted page-speed analysis API and normalises
// its loosely-typed payload into the compact report served by /api/audit.
package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"

	"github.com/use-agent/pagepulse/config"
	"github.com/use-agent/pagepulse/models"
)

// lab metric audit IDs in the upstream payload.
const (
	auditFCP  = "first-contentful-paint"
	auditLCP  = "largest-contentful-paint"
	auditCLS  = "cumulative-layout-shift"
	auditTBT  = "total-blocking-time"
	auditSI   = "speed-index"
	auditTTFB = "server-response-time"
)

// Client is the page-speed analysis API client.
type Client struct {
	cfg        config.PageSpeedConfig
	httpClient *http.Client
}

// NewClient creates a client. Pass nil to use a default http.Client; the
// per-call timeout comes from the config.
func NewClient(cfg config.PageSpeedConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Analyze runs one upstream analysis and returns the normalised report.
// Upstream failures keep the upstream's own HTTP status so the API layer can
// pass it through.
func (c *Client) Analyze(ctx context.Context, targetURL string) (*models.AuditReport, error) {
	if c.cfg.APIKey == "" {
		return nil, models.NewAuditError(models.ErrCodeConfig,
			"page-speed API key is not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("url", targetURL)
	q.Set("key", c.cfg.APIKey)
	q.Set("strategy", "mobile")
	q["category"] = []string{"performance", "accessibility", "best-practices", "seo"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeInternal, "build analysis request failed", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeUpstream, "analysis API unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeUpstream, "read analysis response failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewUpstreamError(models.ErrCodeUpstream,
			fmt.Sprintf("analysis API responded with HTTP %d", resp.StatusCode),
			resp.StatusCode, nil)
	}

	var raw psiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, models.NewAuditError(models.ErrCodeUpstream, "analysis response is not valid JSON", err)
	}

	report := normalise(&raw)
	report.TargetURL = targetURL
	return report, nil
}

// psiResponse covers the slice of the upstream payload the report needs.
type psiResponse struct {
	LighthouseResult struct {
		RequestedURL string `json:"requestedUrl"`
		FinalURL     string `json:"finalUrl"`
		FetchTime    string `json:"fetchTime"`

		Categories map[string]struct {
			Score *float64 `json:"score"`
		} `json:"categories"`

		Audits map[string]psiAudit `json:"audits"`
	} `json:"lighthouseResult"`

	LoadingExperience struct {
		OverallCategory string `json:"overall_category"`
		Metrics         map[string]struct {
			Percentile int    `json:"percentile"`
			Category   string `json:"category"`
		} `json:"metrics"`
	} `json:"loadingExperience"`
}

type psiAudit struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Score        *float64 `json:"score"`
	NumericValue *float64 `json:"numericValue"`
	DisplayValue string   `json:"displayValue"`
	Details      *struct {
		Type             string   `json:"type"`
		OverallSavingsMs *float64 `json:"overallSavingsMs"`
	} `json:"details"`
}

// normalise maps the raw payload to the report. Anything absent upstream
// stays nil rather than becoming a misleading zero.
func normalise(raw *psiResponse) *models.AuditReport {
	lr := raw.LighthouseResult

	report := &models.AuditReport{
		RequestedURL: lr.RequestedURL,
		FinalURL:     lr.FinalURL,
		FetchTime:    lr.FetchTime,
		Scores: models.CategoryScores{
			Performance:   categoryScore(raw, "performance"),
			Accessibility: categoryScore(raw, "accessibility"),
			BestPractices: categoryScore(raw, "best-practices"),
			SEO:           categoryScore(raw, "seo"),
		},
		Metrics: models.LabMetrics{
			FCPMs:  auditNumeric(raw, auditFCP),
			LCPMs:  auditNumeric(raw, auditLCP),
			CLS:    auditNumeric(raw, auditCLS),
			TBTMs:  auditNumeric(raw, auditTBT),
			SIMs:   auditNumeric(raw, auditSI),
			TTFBMs: auditNumeric(raw, auditTTFB),
		},
	}

	if raw.LoadingExperience.OverallCategory != "" || len(raw.LoadingExperience.Metrics) > 0 {
		fd := &models.FieldData{
			OverallCategory: raw.LoadingExperience.OverallCategory,
			Metrics:         make(map[string]models.FieldMetric, len(raw.LoadingExperience.Metrics)),
		}
		for name, m := range raw.LoadingExperience.Metrics {
			fd.Metrics[name] = models.FieldMetric{Percentile: m.Percentile, Category: m.Category}
		}
		report.FieldData = fd
	}

	report.Opportunities, report.Diagnostics = splitAudits(lr.Audits)
	return report
}

// splitAudits separates failing audits into opportunities (estimated saving
// attached) and diagnostics (informative only). Passing audits and the lab
// metrics themselves are not repeated.
func splitAudits(audits map[string]psiAudit) ([]models.Opportunity, []models.Diagnostic) {
	metricIDs := map[string]struct{}{
		auditFCP: {}, auditLCP: {}, auditCLS: {}, auditTBT: {}, auditSI: {}, auditTTFB: {},
	}

	var opps []models.Opportunity
	var diags []models.Diagnostic
	for id, a := range audits {
		if _, isMetric := metricIDs[id]; isMetric {
			continue
		}
		if a.Score == nil || *a.Score >= 0.9 {
			continue
		}
		if a.Details != nil && a.Details.OverallSavingsMs != nil && *a.Details.OverallSavingsMs > 0 {
			opps = append(opps, models.Opportunity{
				ID:          id,
				Title:       a.Title,
				Description: a.Description,
				SavingsMs:   a.Details.OverallSavingsMs,
			})
			continue
		}
		diags = append(diags, models.Diagnostic{
			ID:           id,
			Title:        a.Title,
			Description:  a.Description,
			DisplayValue: a.DisplayValue,
		})
	}

	// Largest saving first; diagnostics stay alphabetical for stable output.
	sort.SliceStable(opps, func(i, j int) bool { return *opps[i].SavingsMs > *opps[j].SavingsMs })
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].ID < diags[j].ID })
	return opps, diags
}

func categoryScore(raw *psiResponse, name string) *int {
	cat, ok := raw.LighthouseResult.Categories[name]
	if !ok || cat.Score == nil {
		return nil
	}
	score := int(math.Round(*cat.Score * 100))
	return &score
}

func auditNumeric(raw *psiResponse, id string) *float64 {
	a, ok := raw.LighthouseResult.Audits[id]
	if !ok {
		return nil
	}
	return a.NumericValue
}
