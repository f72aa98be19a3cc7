package severity

import (
	"regexp"
	"strings"

	"github.com/rcliao/signal-memory/internal/model"
)

// issueLine matches an optional list marker (numeral+period, hyphen or
// asterisk) followed by whitespace and non-empty content.
var issueLine = regexp.MustCompile(`^(?:\s*(?:\d+\.|[-*]))?\s+(\S.*)$`)

// Classifier assigns severity tiers by phrase lookup.
// Safe for concurrent use: the phrase sets are fixed at construction time.
type Classifier struct {
	high   []string
	medium []string
	low    []string
}

// NewClassifier creates a classifier over table. An empty table uses DefaultPhrases.
func NewClassifier(table PhraseTable) *Classifier {
	if len(table) == 0 {
		table = DefaultPhrases
	}
	return &Classifier{
		high:   table.Tier(model.SeverityHigh),
		medium: table.Tier(model.SeverityMedium),
		low:    table.Tier(model.SeverityLow),
	}
}

// Classify returns the tier for a single line. HIGH phrases win over LOW
// phrases on the same line; lines matching neither are MEDIUM.
func (c *Classifier) Classify(line string) model.Severity {
	lower := strings.ToLower(line)
	switch {
	case containsAny(lower, c.high):
		return model.SeverityHigh
	case containsAny(lower, c.low):
		return model.SeverityLow
	default:
		return model.SeverityMedium
	}
}

// Parse extracts one IssueRecord per enumerated line, in source order.
func (c *Classifier) Parse(text string) []model.IssueRecord {
	var issues []model.IssueRecord
	for _, line := range splitLines(text) {
		m := issueLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		issues = append(issues, model.IssueRecord{
			Title:    strings.TrimSpace(m[1]),
			Severity: c.Classify(line),
		})
	}
	return issues
}

// Summarize counts, over every line of text, the lines mentioning each tier.
// Lines need not be enumerated, so Total may differ from len(Parse(text)).
func (c *Classifier) Summarize(text string) model.SeveritySummary {
	var s model.SeveritySummary
	for _, line := range splitLines(text) {
		lower := strings.ToLower(line)
		if containsAny(lower, c.high) {
			s.High++
		}
		if containsAny(lower, c.medium) {
			s.Medium++
		}
		if containsAny(lower, c.low) {
			s.Low++
		}
	}
	s.Total = s.High + s.Medium + s.Low
	return s
}

// Analyze runs Parse and Summarize over the same text.
func (c *Classifier) Analyze(text string) model.Analysis {
	issues := c.Parse(text)
	if issues == nil {
		issues = []model.IssueRecord{}
	}
	return model.Analysis{
		Issues:  issues,
		Summary: c.Summarize(text),
	}
}

func splitLines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
