package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/thomas-vilte/issuedigest/internal/models"
)

// Field names the model is asked to fill in.
const (
	FieldPrincipalArguments  = "PrincipalArguments"
	FieldSuggestedSolutions  = "SuggestedSolutions"
	FieldAreasOfConsensus    = "AreasOfConsensus"
	FieldAreasOfDisagreement = "AreasOfDisagreement"
	FieldConciseSummary      = "ConciseSummary"
)

// MinValueLength is the raw value length under which a field is treated as an
// empty placeholder (e.g. `""`) and ignored.
const MinValueLength = 15

// maxContinuationLines bounds how far a value that opens a list may run onto the
// following lines.
const maxContinuationLines = 50

// fieldValue is one recovered value, tagged as a single string or a list of
// strings.
type fieldValue struct {
	text   string
	list   []string
	isList bool
}

// keyLine matches a line that starts a new `"Key":` pair.
var keyLine = regexp.MustCompile(`^"[^"]*"\s*:`)

// ParseSummary recovers a SummaryRecord from a model response that is supposed to
// be a JSON object but may carry commentary, code fences or broken syntax.
// It scans the response line by line and keeps every `"Key": value` pair whose
// value is a JSON string or list of strings, so one malformed field never costs the
// others. It never fails; an unusable response gives an empty record.
func ParseSummary(response string) models.SummaryRecord {
	fields := scanFields(response)
	if len(fields) == 0 {
		fields = scanObject(response)
	}

	return models.SummaryRecord{
		PrincipalArguments:  fields.list(FieldPrincipalArguments),
		SuggestedSolutions:  fields.list(FieldSuggestedSolutions),
		AreasOfConsensus:    fields.list(FieldAreasOfConsensus),
		AreasOfDisagreement: fields.list(FieldAreasOfDisagreement),
		ConciseSummary:      fields.text(FieldConciseSummary),
	}
}

type fieldSet map[string]fieldValue

func scanFields(response string) fieldSet {
	fields := make(fieldSet)
	lines := strings.Split(response, "\n")

	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), `"`) {
			continue
		}

		key, value, found := strings.Cut(lines[i], ":")
		if !found {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `" `)

		// A list may be pretty-printed over several lines. The continuation never
		// swallows the next key, and on failure those lines are scanned on their own.
		if opensList(value) {
			if v, end, ok := continueList(lines, i, value); ok {
				fields[key] = v
				i = end
				continue
			}
		}

		if len(value) < MinValueLength {
			continue
		}

		if v, ok := decodeValue(value); ok {
			fields[key] = v
		}
	}

	return fields
}

// scanObject is the fallback for responses that put the whole object on one line
// or otherwise defeat the line scanner: it decodes the outermost {...} block.
func scanObject(response string) fieldSet {
	fields := make(fieldSet)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return fields
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return fields
	}

	for key, msg := range raw {
		if len(msg) < MinValueLength {
			continue
		}
		if v, ok := decodeValue(string(msg)); ok {
			fields[strings.TrimSpace(key)] = v
		}
	}

	return fields
}

// continueList joins the lines after start until one closes the list and decodes
// the result. It gives up at the next `"Key":` line.
func continueList(lines []string, start int, value string) (fieldValue, int, bool) {
	end := min(len(lines), start+1+maxContinuationLines)
	for j := start + 1; j < end; j++ {
		if keyLine.MatchString(strings.TrimSpace(lines[j])) {
			return fieldValue{}, 0, false
		}
		value += "\n" + lines[j]
		if closesList(lines[j]) {
			if len(value) < MinValueLength {
				return fieldValue{}, 0, false
			}
			v, ok := decodeValue(value)
			return v, j, ok
		}
	}
	return fieldValue{}, 0, false
}

func opensList(value string) bool {
	v := strings.TrimSpace(value)
	return strings.HasPrefix(v, "[") && !strings.Contains(v, "]")
}

func closesList(line string) bool {
	l := strings.TrimRight(strings.TrimSpace(line), ",")
	return strings.HasSuffix(l, "]")
}

// decodeValue parses a raw value as a JSON string or a JSON list of strings.
// Surrounding whitespace and one trailing comma are tolerated.
func decodeValue(raw string) (fieldValue, bool) {
	v := strings.TrimSpace(raw)
	v = strings.TrimSpace(strings.TrimSuffix(v, ","))
	if v == "" {
		return fieldValue{}, false
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return fieldValue{}, false
		}
		return fieldValue{text: s}, true
	case '[':
		var items []any
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return fieldValue{}, false
		}
		list := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return fieldValue{}, false
			}
			list = append(list, s)
		}
		return fieldValue{list: list, isList: true}, true
	default:
		return fieldValue{}, false
	}
}

// list returns the field as a list of strings, or nil when it is missing or was
// not given as a list.
func (f fieldSet) list(key string) []string {
	v, ok := f[key]
	if !ok || !v.isList {
		return nil
	}
	return v.list
}

// text returns the field as a string, or nil when it is missing or was not given
// as a string.
func (f fieldSet) text(key string) *string {
	v, ok := f[key]
	if !ok || v.isList {
		return nil
	}
	s := v.text
	return &s
}
