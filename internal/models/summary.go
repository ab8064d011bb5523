package models

import "strings"

// SummaryRecord is the structured summary recovered from a model response.
// Every field is optional on its own: a nil slice or a nil pointer means the model
// gave nothing usable for that field.
type SummaryRecord struct {
	PrincipalArguments  []string
	SuggestedSolutions  []string
	AreasOfConsensus    []string
	AreasOfDisagreement []string
	ConciseSummary      *string
}

// IsEmpty reports whether no field was recovered.
func (s SummaryRecord) IsEmpty() bool {
	return s.PrincipalArguments == nil &&
		s.SuggestedSolutions == nil &&
		s.AreasOfConsensus == nil &&
		s.AreasOfDisagreement == nil &&
		s.ConciseSummary == nil
}

// Render formats the present fields as labeled lines in a fixed order and skips
// the absent ones.
func (s SummaryRecord) Render() string {
	lines := make([]string, 0, 5)

	appendList := func(label string, items []string) {
		if items != nil {
			lines = append(lines, label+": "+strings.Join(items, " "))
		}
	}

	appendList("Key arguments", s.PrincipalArguments)
	appendList("Solutions", s.SuggestedSolutions)
	appendList("Consensus", s.AreasOfConsensus)
	appendList("Disagreement", s.AreasOfDisagreement)
	if s.ConciseSummary != nil {
		lines = append(lines, "Summary: "+*s.ConciseSummary)
	}

	return strings.Join(lines, "\n")
}
