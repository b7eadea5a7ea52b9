package lexer

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// chromaClassifier adapts a chroma lexer to Classifier.
type chromaClassifier struct {
	lexer    chroma.Lexer
	language string
}

// ChromaResolver resolves a file name through chroma's filename globs.
func ChromaResolver(filename string) (Classifier, bool) {
	l := lexers.Match(filename)
	if l == nil {
		return nil, false
	}
	return NewChroma(l), true
}

// NewChroma wraps a chroma lexer.
func NewChroma(l chroma.Lexer) Classifier {
	return &chromaClassifier{lexer: l, language: canonicalLanguage(l.Config().Name)}
}

func (c *chromaClassifier) Language() string { return c.language }

func (c *chromaClassifier) Tokens(ctx context.Context, text string) (iter.Seq[Token], error) {
	it, err := c.lexer.Tokenise(nil, text)
	if err != nil {
		return nil, fmt.Errorf("lexer: tokenise %s: %w", c.language, err)
	}
	return func(yield func(Token) bool) {
		for t := it(); t != chroma.EOF; t = it() {
			if ctx.Err() != nil {
				return
			}
			if !yield(Token{Category: chromaCategory(t.Type), Text: t.Value}) {
				return
			}
		}
	}, nil
}

// chromaCategory maps chroma's token types onto the Category taxonomy.
// Subcategory checks come before category checks because chroma nests
// strings and numbers under Literal.
func chromaCategory(t chroma.TokenType) Category {
	switch {
	case t.InSubCategory(chroma.CommentPreproc):
		return CommentPreproc
	case t.InCategory(chroma.Comment):
		switch t {
		case chroma.CommentHashbang:
			return CommentHashbang
		case chroma.CommentMultiline:
			return CommentMultiline
		case chroma.CommentSingle:
			return CommentSingle
		case chroma.CommentSpecial:
			return CommentSpecial
		}
		return Comment
	case t.InCategory(chroma.Text):
		if t == chroma.TextWhitespace {
			return TextWhitespace
		}
		return Text
	case t.InSubCategory(chroma.LiteralString):
		if k, ok := chromaStringKinds[t]; ok {
			return k
		}
		return String
	case t.InSubCategory(chroma.LiteralNumber):
		return Number
	case t.InCategory(chroma.Keyword):
		return Keyword
	case t.InCategory(chroma.Name):
		return Name
	case t.InCategory(chroma.Operator):
		if t == chroma.OperatorWord {
			return OperatorWord
		}
		return Operator
	case t.InCategory(chroma.Punctuation):
		return Punctuation
	}
	return Other
}

var chromaStringKinds = map[chroma.TokenType]Category{
	chroma.LiteralString:          String,
	chroma.LiteralStringAffix:     StringAffix,
	chroma.LiteralStringBacktick:  StringBacktick,
	chroma.LiteralStringChar:      StringChar,
	chroma.LiteralStringDelimiter: StringDelimiter,
	chroma.LiteralStringDoc:       StringDoc,
	chroma.LiteralStringDouble:    StringDouble,
	chroma.LiteralStringEscape:    StringEscape,
	chroma.LiteralStringHeredoc:   StringHeredoc,
	chroma.LiteralStringInterpol:  StringInterpol,
	chroma.LiteralStringOther:     StringOther,
	chroma.LiteralStringRegex:     StringRegex,
	chroma.LiteralStringSingle:    StringSingle,
	chroma.LiteralStringSymbol:    StringSymbol,
}

// canonicalLanguage normalizes lexer names so chroma and tree-sitter agree
// on keys such as "cpp" and "python".
func canonicalLanguage(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "c++":
		return "cpp"
	case "python 2", "python3", "python 3":
		return "python"
	case "golang":
		return "go"
	}
	return n
}
