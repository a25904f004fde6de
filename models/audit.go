package models

// AuditReport is the normalised page-speed audit returned by /api/audit.
//
// The upstream API returns a large, loosely-typed payload where almost every
// field can be absent (failed sub-audits, missing field data for low-traffic
// origins). Optional fields are pointers so consumers must handle absence
// explicitly instead of reading silent zero values.
type AuditReport struct {
	TargetURL    string `json:"targetUrl"`
	RequestedURL string `json:"requestedUrl"`
	FinalURL     string `json:"finalUrl"`
	FetchTime    string `json:"fetchTime"`

	Scores  CategoryScores `json:"scores"`
	Metrics LabMetrics     `json:"metrics"`

	FieldData     *FieldData    `json:"fieldData,omitempty"`
	Opportunities []Opportunity `json:"opportunities,omitempty"`
	Diagnostics   []Diagnostic  `json:"diagnostics,omitempty"`
}

// CategoryScores holds the 0-100 category scores. A nil score means the
// category was not evaluated upstream.
type CategoryScores struct {
	Performance    *int `json:"performance"`
	Accessibility  *int `json:"accessibility"`
	BestPractices  *int `json:"bestPractices"`
	SEO            *int `json:"seo"`
}

// LabMetrics holds the simulated lab timings in milliseconds (CLS is
// unitless).
type LabMetrics struct {
	FCPMs  *float64 `json:"fcpMs"`
	LCPMs  *float64 `json:"lcpMs"`
	CLS    *float64 `json:"cls"`
	TBTMs  *float64 `json:"tbtMs"`
	SIMs   *float64 `json:"siMs"`
	TTFBMs *float64 `json:"ttfbMs"`
}

// FieldData holds real-user percentiles from the upstream rolling window.
type FieldData struct {
	OverallCategory string                 `json:"overallCategory,omitempty"`
	Metrics         map[string]FieldMetric `json:"metrics,omitempty"`
}

// FieldMetric is one real-user metric distribution.
type FieldMetric struct {
	Percentile int    `json:"percentile"`
	Category   string `json:"category"`
}

// Opportunity is a lab-identified potential saving.
type Opportunity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	SavingsMs   *float64 `json:"savingsMs,omitempty"`
}

// Diagnostic is an informative lab audit without an estimated saving.
type Diagnostic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DisplayValue string  `json:"displayValue,omitempty"`
}
