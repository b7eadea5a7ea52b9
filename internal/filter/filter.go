// Package filter decides which classified tokens count as source
// vocabulary and splits kept tokens into words.
package filter

import (
	"fmt"
	"strings"

	"github.com/jward/wordle/internal/lexer"
)

// Policy selects how Comment tokens are treated.
type Policy int

const (
	// DropComments discards every Comment token whole.
	DropComments Policy = iota
	// SplitComments lets Comment tokens fall through to the remaining
	// rules, so their words are split and counted like any other text.
	SplitComments
)

func (p Policy) String() string {
	switch p {
	case DropComments:
		return "drop"
	case SplitComments:
		return "split"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "drop" or "split". The empty string means drop.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return DropComments, nil
	case "split":
		return SplitComments, nil
	}
	return DropComments, fmt.Errorf("filter: unknown comment policy %q (want drop or split)", s)
}

// Filter is a pure, stateless token predicate.
type Filter struct {
	Policy Policy
	// DropDocstrings discards String.Doc tokens whole. The zero value
	// keeps them as ordinary string text.
	DropDocstrings bool
}

// New returns a Filter with the given comment policy.
func New(p Policy) Filter { return Filter{Policy: p} }

// Keep reports whether tok contributes to the word count. Rules are
// evaluated top to bottom and the first match drops the token.
func (f Filter) Keep(tok lexer.Token) bool {
	cat, text := tok.Category, tok.Text

	if cat.In(lexer.Comment) && f.Policy == DropComments {
		return false
	}
	if cat.In(lexer.StringDoc) && f.DropDocstrings {
		return false
	}
	if cat.In(lexer.Text) && isBlank(text) {
		return false
	}
	if cat.In(lexer.String) && text == `"` {
		return false
	}
	// `^\\*` admits the empty match, so every escape token goes.
	if cat.In(lexer.StringEscape) {
		return false
	}
	if cat.In(lexer.StringDouble) && (text == "\n" || allOf(text, '"')) {
		return false
	}
	if cat.In(lexer.StringSingle) && (text == "\n" || allOf(text, '\'')) {
		return false
	}
	if cat.In(lexer.Punctuation) && isStructural(text) {
		return false
	}
	if cat.In(lexer.Operator) {
		return false
	}
	if cat.In(lexer.StringAffix) {
		return false
	}
	if cat.In(lexer.StringInterpol) && (text == "{" || text == "}") {
		return false
	}
	if allOf(text, ':') {
		return false
	}
	return true
}

// Words splits a kept token on single spaces, tabs and newlines. Empty
// pieces from consecutive separators are omitted.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
}

// Apply runs Keep and Words over a token, returning nil for dropped tokens.
func (f Filter) Apply(tok lexer.Token) []string {
	if !f.Keep(tok) {
		return nil
	}
	return Words(tok.Text)
}

// isBlank matches "\n", " ", all-tab, and all-whitespace text, including
// the empty string.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// allOf reports whether s consists only of c. The empty string qualifies.
func allOf(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			return false
		}
	}
	return true
}

func isStructural(s string) bool {
	return len(s) == 1 && strings.Contains("[],{}:();", s)
}
