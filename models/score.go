package models

// Severity buckets for findings and the overall score.
const (
	SeverityGood = "good"
	SeverityWarn = "warn"
	SeverityBad  = "bad"
)

// Finding is one scored dimension's evaluated result. The scoring engine
// emits exactly one Finding per dimension per run.
type Finding struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Value    int    `json:"value"`
	Severity string `json:"severity"`

	// Points is the deduction applied for this dimension, always <= 0.
	Points int `json:"points"`

	Message   string `json:"message"`
	Threshold string `json:"threshold"`
}

// Overall is the aggregate page score.
type Overall struct {
	Score    int    `json:"score"` // clamped to [0,100]
	Severity string `json:"severity"`
	Label    string `json:"label"`
}

// Recommendation is an actionable item derived from a non-good finding.
type Recommendation struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Action   string `json:"action"`
	Points   int    `json:"points"`
	Severity string `json:"severity"`
}

// ScoreResult is the scoring engine output. Recommendations hold the
// non-good findings sorted by ascending points (most negative first).
type ScoreResult struct {
	Overall         Overall          `json:"overall"`
	Findings        []Finding        `json:"findings"`
	Recommendations []Recommendation `json:"recommendations"`
}
