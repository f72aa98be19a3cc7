// Package model defines the core issue and learning data types.
package model

// Severity is the tier assigned to a line of advisory text.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// IssueRecord is one enumerated line of advisory text.
type IssueRecord struct {
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
}

// SeveritySummary counts lines mentioning each tier's phrases.
// Total is the sum of the three counts, not the number of issue records.
type SeveritySummary struct {
	High   int `json:"highCount"`
	Medium int `json:"mediumCount"`
	Low    int `json:"lowCount"`
	Total  int `json:"totalIssues"`
}

// Analysis is the result of a single parse call.
type Analysis struct {
	Issues  []IssueRecord   `json:"issues"`
	Summary SeveritySummary `json:"summary"`
}
