package models

// PoolStats reports the renderer's page pool utilisation.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool"`
	Version   string    `json:"version"`
}

// StructureResponse is the payload for GET /api/asp-recommendations.
type StructureResponse struct {
	TargetURL string       `json:"targetUrl"`
	FinalURL  string       `json:"finalUrl"`
	Counts    CensusCounts `json:"counts"`
	ASP       ScoreResult  `json:"asp"`
	Mode      string       `json:"mode"`
}

// HalfError is one subsystem's failure inside a combined audit. The other
// subsystem's result is still returned (partial-failure semantics).
type HalfError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FullAuditResponse is the payload for GET /api/full-audit. The page-speed
// and census halves settle independently; a nil half has its error set.
type FullAuditResponse struct {
	TargetURL      string             `json:"targetUrl"`
	Audit          *AuditReport       `json:"audit,omitempty"`
	AuditError     *HalfError         `json:"auditError,omitempty"`
	Structure      *StructureResponse `json:"structure,omitempty"`
	StructureError *HalfError         `json:"structureError,omitempty"`
}

// SummaryRequest is the body for POST /api/recommendations.
type SummaryRequest struct {
	APIKey string         `json:"apiKey"`
	Audit  map[string]any `json:"audit"`
}

// SummaryResponse is the payload for POST /api/recommendations.
type SummaryResponse struct {
	Recommendations   string    `json:"recommendations"`
	Extracted         *PageMeta `json:"extracted,omitempty"`
	SuggestedKeywords []string  `json:"suggestedKeywords,omitempty"`
}
