package model

// Finding severities.
const (
	SeverityInfo     = "info"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// SecurityFinding is the outcome of one detector. Examples holds up to a
// handful of matched strings for audit and is only populated on failure.
type SecurityFinding struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Pass     bool     `json:"pass"`
	Severity string   `json:"severity"`
	Notes    string   `json:"notes"`
	Examples []string `json:"examples,omitempty"`
}

// SecurityResult aggregates the detector battery. Score starts at MaxScore
// and each failing detector deducts a fixed amount, floored at zero; the
// deductions across the full detector set sum to exactly MaxScore.
type SecurityResult struct {
	Score      int               `json:"score"`
	MaxScore   int               `json:"max_score"`
	Percentage int               `json:"percentage"`
	Findings   []SecurityFinding `json:"findings"`
}
