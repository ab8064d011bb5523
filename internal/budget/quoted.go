// Package budget squeezes issue and comment text into word and token budgets
// before it is handed to a language model.
package budget

import (
	"math"
	"strings"
)

// MaxWordLength is the byte length at which a single whitespace-delimited token is
// treated as noise (hashes, base64 blobs, minified code) and dropped.
const MaxWordLength = 150

var fenceMarkers = []string{"```", `"""`}

// ReduceQuoted removes fenced blocks and over-long words from text and, when the
// cleaned text holds more than maxLen words, keeps the first floor(maxLen*split)
// words and the last maxLen minus that, dropping the middle.
//
// A fence that is opened and never closed hides everything after it.
func ReduceQuoted(text string, maxLen int, split float64) string {
	cleaned := StripQuoted(text)

	words := strings.Fields(cleaned)
	if len(words) <= maxLen {
		return cleaned
	}

	head, tail := splitCounts(maxLen, split)

	kept := make([]string, 0, head+tail)
	kept = append(kept, words[:head]...)
	kept = append(kept, words[len(words)-tail:]...)
	return strings.Join(kept, " ")
}

// StripQuoted drops every line that opens or closes a fenced block, every line
// inside one, and every word of MaxWordLength bytes or more. Each surviving line is
// re-joined with single spaces and terminated by a newline.
func StripQuoted(text string) string {
	if text == "" {
		return ""
	}

	var body strings.Builder
	insideQuote := false

	for _, line := range lines(text) {
		if isFence(line) {
			insideQuote = !insideQuote
			continue
		}
		if insideQuote {
			continue
		}

		words := strings.Fields(line)
		kept := words[:0]
		for _, w := range words {
			if len(w) < MaxWordLength {
				kept = append(kept, w)
			}
		}
		body.WriteString(strings.Join(kept, " "))
		body.WriteByte('\n')
	}

	return body.String()
}

// lines splits text on newlines without yielding an empty final line for a
// trailing newline, and strips a carriage return from CRLF endings.
func lines(text string) []string {
	out := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range out {
		out[i] = strings.TrimSuffix(l, "\r")
	}
	return out
}

func isFence(line string) bool {
	for _, marker := range fenceMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// splitCounts divides a budget of limit units into a head and a tail share.
// Both shares are clamped so that neither is negative and their sum is limit.
func splitCounts(limit int, split float64) (head, tail int) {
	if limit <= 0 {
		return 0, 0
	}
	if math.IsNaN(split) || split < 0 {
		split = 0
	}
	if split > 1 {
		split = 1
	}

	head = int(math.Floor(float64(limit) * split))
	head = min(max(head, 0), limit)
	return head, limit - head
}
