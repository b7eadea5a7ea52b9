package lexer

import (
	"context"
	"iter"
	"strings"
)

// Category is a lexical token category. Categories form a dotted hierarchy:
// "String.Double" is a subkind of "String".
type Category string

// Comments.
const (
	Comment          Category = "Comment"
	CommentHashbang  Category = "Comment.Hashbang"
	CommentMultiline Category = "Comment.Multiline"
	CommentPreproc   Category = "Comment.Preproc"
	CommentSingle    Category = "Comment.Single"
	CommentSpecial   Category = "Comment.Special"
)

// Text and whitespace.
const (
	Text           Category = "Text"
	TextWhitespace Category = "Text.Whitespace"
)

// String literals.
const (
	String          Category = "String"
	StringAffix     Category = "String.Affix"
	StringBacktick  Category = "String.Backtick"
	StringChar      Category = "String.Char"
	StringDelimiter Category = "String.Delimiter"
	StringDoc       Category = "String.Doc"
	StringDouble    Category = "String.Double"
	StringEscape    Category = "String.Escape"
	StringHeredoc   Category = "String.Heredoc"
	StringInterpol  Category = "String.Interpol"
	StringOther     Category = "String.Other"
	StringRegex     Category = "String.Regex"
	StringSingle    Category = "String.Single"
	StringSymbol    Category = "String.Symbol"
)

// Everything else.
const (
	Keyword      Category = "Keyword"
	Name         Category = "Name"
	Number       Category = "Number"
	Operator     Category = "Operator"
	OperatorWord Category = "Operator.Word"
	Punctuation  Category = "Punctuation"
	Other        Category = "Other"
)

// In reports whether c is parent or one of its subkinds.
func (c Category) In(parent Category) bool {
	if c == parent {
		return true
	}
	return strings.HasPrefix(string(c), string(parent)+".")
}

// Token is a (category, text) pair produced by lexical classification of
// one source file.
type Token struct {
	Category Category
	Text     string
}

// Classifier turns source text into a token sequence using the lexical
// grammar of one language. The returned sequence is finite and may only be
// consumed once.
type Classifier interface {
	// Language returns the canonical language name, e.g. "python" or "cpp".
	Language() string

	// Tokens classifies text.
	Tokens(ctx context.Context, text string) (iter.Seq[Token], error)
}
