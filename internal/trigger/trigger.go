// Package trigger recognises chat messages that ask for an issue digest.
//
// A trigger message has the shape
//
//	<trigger words> [owner/repo] [days]
//
// where the trigger words are the first one or two words of the message and must
// contain the configured phrase, owner/repo is an optional slash-separated
// repository and days an optional trailing integer lookback window.
package trigger

import (
	"strconv"
	"strings"
)

const (
	DefaultPhrase = "flows summarize"
	DefaultOwner  = "WasmEdge"
	DefaultRepo   = "WasmEdge"
	DefaultDays   = 7
)

// Request is a recognised digest request.
type Request struct {
	Owner string
	Repo  string
	Days  int

	// RepoGiven reports whether the message named an owner or repository.
	RepoGiven bool
	// DaysGiven reports whether the message ended with a usable day count.
	DaysGiven bool
}

// Grammar parses trigger messages against a phrase and fallback repository.
type Grammar struct {
	Phrase string
	Owner  string
	Repo   string
	Days   int
}

// NewGrammar returns a grammar with the package defaults filled in for every
// empty argument.
func NewGrammar(phrase, owner, repo string) Grammar {
	g := Grammar{Phrase: phrase, Owner: owner, Repo: repo, Days: DefaultDays}
	if strings.TrimSpace(g.Phrase) == "" {
		g.Phrase = DefaultPhrase
	}
	if g.Owner == "" {
		g.Owner = DefaultOwner
	}
	if g.Repo == "" {
		g.Repo = DefaultRepo
	}
	return g
}

// Parse reads text with the default owner, repository and window.
func Parse(text, phrase string) (Request, bool) {
	return NewGrammar(phrase, "", "").Parse(text)
}

// Parse recognises text as a digest request. The second result is false when the
// message is not addressed to the bot.
func (g Grammar) Parse(text string) (Request, bool) {
	words := strings.Fields(text)
	phrase := strings.Join(strings.Fields(g.Phrase), " ")
	if len(words) == 0 || phrase == "" {
		return Request{}, false
	}

	n := triggerWords(words, phrase)
	if n == 0 {
		return Request{}, false
	}
	rest := words[n:]

	req := Request{Owner: g.Owner, Repo: g.Repo, Days: g.defaultDays()}

	if len(rest) > 0 && isNumber(rest[len(rest)-1]) {
		if days, err := strconv.Atoi(rest[len(rest)-1]); err == nil && days > 0 {
			req.Days = days
			req.DaysGiven = true
		}
		rest = rest[:len(rest)-1]
	}

	if target := strings.TrimSpace(strings.Join(rest, " ")); target != "" {
		owner, repo, _ := strings.Cut(target, "/")
		repo, _, _ = strings.Cut(repo, "/")
		if owner = strings.TrimSpace(owner); owner != "" {
			req.Owner = owner
			req.RepoGiven = true
		}
		if repo = strings.TrimSpace(repo); repo != "" {
			req.Repo = repo
			req.RepoGiven = true
		}
	}

	return req, true
}

func (g Grammar) defaultDays() int {
	if g.Days > 0 {
		return g.Days
	}
	return DefaultDays
}

// triggerWords returns how many leading words form the trigger, or 0 when neither
// the first word nor the first two (nor, for longer phrases, as many words as the
// phrase has) contain the phrase.
func triggerWords(words []string, phrase string) int {
	limit := max(2, len(strings.Fields(phrase)))
	for n := 1; n <= limit && n <= len(words); n++ {
		if strings.Contains(strings.Join(words[:n], " "), phrase) {
			return n
		}
	}
	return 0
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
