// Package filter redacts banned words from user submitted text.
package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// BannedWords is the default redaction list. Names, slurs and violence terms
// share a single severity: every match is masked.
var BannedWords = []string{
	// names
	"john", "mary", "charles", "anna", "peter", "richard", "teresa",
	// offensive
	"nigger", "faggot", "retard", "bitch", "asshole",
	// threats
	"kill", "die", "suicide", "bomb", "violence",
}

const DefaultMask = '*'

// Filter masks whole-word, case-insensitive matches of its word list.
// A Filter is immutable and safe for concurrent use.
type Filter struct {
	pattern *regexp.Regexp
	mask    string
}

// New compiles a filter for words. Empty entries are ignored; with no words
// the filter returns its input unchanged.
func New(words []string, mask rune) *Filter {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}

	f := &Filter{mask: string(mask)}
	if len(quoted) > 0 {
		f.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return f
}

// Default returns a filter over BannedWords masking with '*'.
func Default() *Filter {
	return New(BannedWords, DefaultMask)
}

// Apply returns text with each banned word replaced by a mask run of the
// same length. Text outside matches is returned as is.
func (f *Filter) Apply(text string) string {
	if f.pattern == nil || text == "" {
		return text
	}
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat(f.mask, utf8.RuneCountInString(match))
	})
}
