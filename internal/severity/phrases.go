// Package severity extracts severity-ranked issues from advisory text.
package severity

import (
	"strings"

	"github.com/rcliao/signal-memory/internal/model"
)

// Phrase pairs a lowercase phrase with the tier it signals.
type Phrase struct {
	Text string         `json:"text"`
	Tier model.Severity `json:"tier"`
}

// PhraseTable is an ordered list of phrases. Order only matters for display;
// classification precedence is fixed (HIGH, then LOW, then MEDIUM).
type PhraseTable []Phrase

// DefaultPhrases covers English and Spanish advisory output.
var DefaultPhrases = PhraseTable{
	{Text: "high risk", Tier: model.SeverityHigh},
	{Text: "critical", Tier: model.SeverityHigh},
	{Text: "alto riesgo", Tier: model.SeverityHigh},
	{Text: "riesgo alto", Tier: model.SeverityHigh},
	{Text: "crítico", Tier: model.SeverityHigh},
	{Text: "crítica", Tier: model.SeverityHigh},

	{Text: "medium risk", Tier: model.SeverityMedium},
	{Text: "moderate risk", Tier: model.SeverityMedium},
	{Text: "riesgo medio", Tier: model.SeverityMedium},
	{Text: "riesgo moderado", Tier: model.SeverityMedium},

	{Text: "low risk", Tier: model.SeverityLow},
	{Text: "minor", Tier: model.SeverityLow},
	{Text: "bajo riesgo", Tier: model.SeverityLow},
	{Text: "riesgo bajo", Tier: model.SeverityLow},
	{Text: "menor", Tier: model.SeverityLow},
}

// TableFromLists builds a table from per-tier phrase lists.
func TableFromLists(high, medium, low []string) PhraseTable {
	var t PhraseTable
	add := func(list []string, tier model.Severity) {
		for _, p := range list {
			if p = strings.TrimSpace(p); p != "" {
				t = append(t, Phrase{Text: p, Tier: tier})
			}
		}
	}
	add(high, model.SeverityHigh)
	add(medium, model.SeverityMedium)
	add(low, model.SeverityLow)
	return t
}

// Tier returns the phrases of one tier, lowercased, in table order.
func (t PhraseTable) Tier(tier model.Severity) []string {
	var out []string
	for _, p := range t {
		if p.Tier == tier {
			out = append(out, strings.ToLower(p.Text))
		}
	}
	return out
}
