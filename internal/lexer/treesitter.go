package lexer

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// extToLanguage maps file extensions to canonical language names.
var extToLanguage = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".py":   "python",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".java": "java",
	".php":  "php",
	".rb":   "ruby",
}

// langToGrammar maps language names to tree-sitter Language objects.
// Lazily initialized on first call via sync.Once.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"go":         golang.GetLanguage(),
			"typescript": ts.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"python":     python.GetLanguage(),
			"rust":       rust.GetLanguage(),
			"c":          c.GetLanguage(),
			"cpp":        cpp.GetLanguage(),
			"java":       java.GetLanguage(),
			"php":        php.GetLanguage(),
			"ruby":       ruby.GetLanguage(),
		}
	})
}

// TreeSitterLanguages returns the languages with a tree-sitter grammar.
func TreeSitterLanguages() []string {
	initGrammars()
	out := make([]string, 0, len(langToGrammar))
	for lang := range langToGrammar {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

type treeSitterClassifier struct {
	language string
	grammar  *sitter.Language
}

// NewTreeSitter returns a tree-sitter classifier for a canonical language
// name. Returns (nil, false) if the language has no grammar.
func NewTreeSitter(language string) (Classifier, bool) {
	initGrammars()
	g, ok := langToGrammar[language]
	if !ok {
		return nil, false
	}
	return &treeSitterClassifier{language: language, grammar: g}, true
}

func (c *treeSitterClassifier) Language() string { return c.language }

// Tokens parses text and flattens the syntax tree into tokens: leaves
// become tokens, and source bytes not covered by any child (whitespace,
// string bodies in older grammars) become tokens of the enclosing node.
// Each call uses its own parser so classification is goroutine-safe.
func (c *treeSitterClassifier) Tokens(ctx context.Context, text string) (iter.Seq[Token], error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(c.grammar)

	src := []byte(text)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("lexer: parse %s: %w", c.language, err)
	}
	defer tree.Close()

	var toks []Token
	flatten(tree.RootNode(), src, regionCode, &toks)
	return slices.Values(toks), nil
}

// region describes what kind of node encloses a token.
type region int

const (
	regionCode region = iota
	regionString
	regionInterpolation
	regionDoc
	regionPreproc
)

func flatten(n *sitter.Node, src []byte, enclosing region, out *[]Token) {
	typ := n.Type()
	count := int(n.ChildCount())
	if count == 0 || isCommentNode(typ) || isDirectiveNode(typ) {
		text := n.Content(src)
		switch {
		case text == "":
		case count == 0 && isStringNode(typ) && enclosing == regionCode:
			emitLiteral(text, out)
		default:
			*out = append(*out, Token{Category: leafCategory(n, typ, text, enclosing), Text: text})
		}
		return
	}

	inner := enclosing
	switch {
	case isInterpolationNode(typ):
		inner = regionInterpolation
	case isDocstring(n):
		inner = regionDoc
	case isStringNode(typ) && enclosing != regionDoc:
		inner = regionString
	}
	conditional := strings.HasPrefix(typ, "preproc_")

	pos := n.StartByte()
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if start := child.StartByte(); start > pos {
			emitGap(string(src[pos:start]), inner, out)
		}
		if conditional && isDirectivePart(n, child, i) {
			flatten(child, src, regionPreproc, out)
		} else {
			flatten(child, src, inner, out)
		}
		if end := child.EndByte(); end > pos {
			pos = end
		}
	}
	if end := n.EndByte(); end > pos {
		emitGap(string(src[pos:end]), inner, out)
	}
}

func emitGap(text string, enclosing region, out *[]Token) {
	cat := Other
	switch {
	case strings.TrimSpace(text) == "":
		cat = TextWhitespace
	case enclosing == regionDoc:
		cat = StringDoc
	case enclosing == regionString:
		cat = stringCategory(text)
	}
	*out = append(*out, Token{Category: cat, Text: text})
}

// emitLiteral splits a string literal the grammar keeps as one leaf, such
// as a Go raw string, into delimiters and body.
func emitLiteral(text string, out *[]Token) {
	q := text[0]
	if !strings.ContainsRune("`\"'", rune(q)) {
		*out = append(*out, Token{Category: String, Text: text})
		return
	}
	open := len(text) - len(strings.TrimLeft(text, string(q)))
	if open == len(text) {
		*out = append(*out, Token{Category: StringAffix, Text: text})
		return
	}
	closing := min(open, len(text)-len(strings.TrimRight(text, string(q))))
	body := text[open : len(text)-closing]
	*out = append(*out, Token{Category: StringAffix, Text: text[:open]})
	*out = append(*out, Token{Category: String, Text: body})
	if closing > 0 {
		*out = append(*out, Token{Category: StringAffix, Text: text[len(text)-closing:]})
	}
}

func leafCategory(n *sitter.Node, typ, text string, enclosing region) Category {
	switch {
	case isCommentNode(typ):
		return Comment
	case enclosing == regionPreproc || isDirectiveNode(typ):
		return CommentPreproc
	case enclosing == regionDoc && typ != "string_start" && typ != "string_end":
		return StringDoc
	case enclosing == regionInterpolation && (text == "{" || text == "}"):
		return StringInterpol
	case typ == "escape_sequence":
		return StringEscape
	case typ == "string_start" || typ == "string_end":
		return StringAffix
	case enclosing == regionString || isStringNode(typ):
		return stringCategory(text)
	case !n.IsNamed():
		return anonymousCategory(text)
	case strings.Contains(typ, "integer") || strings.Contains(typ, "float") || strings.Contains(typ, "number"):
		return Number
	}
	return Name
}

// anonymousCategory classifies grammar literals: words are keywords,
// single structural characters are punctuation, the rest are operators.
func anonymousCategory(text string) Category {
	switch {
	case isWord(text):
		return Keyword
	case len(text) == 1 && strings.Contains("[](){}:;,.", text):
		return Punctuation
	case strings.Trim(text, `"'`) == "":
		return stringCategory(text)
	}
	return Operator
}

func stringCategory(text string) Category {
	switch {
	case strings.Trim(text, `"`) == "":
		return StringDouble
	case strings.Trim(text, `'`) == "":
		return StringSingle
	}
	return String
}

func isWord(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func isCommentNode(typ string) bool { return strings.Contains(typ, "comment") }

func isStringNode(typ string) bool {
	return strings.Contains(typ, "string") || strings.Contains(typ, "heredoc") || typ == "char_literal"
}

// isDirectiveNode matches single-line preprocessor directives, which are
// taken whole like comments.
func isDirectiveNode(typ string) bool {
	switch typ {
	case "preproc_include", "preproc_def", "preproc_function_def", "preproc_call":
		return true
	}
	return false
}

// isDirectivePart reports whether child i of a conditional preprocessor
// block belongs to the directive line itself (#ifdef NAME, #endif) rather
// than to the code it guards.
func isDirectivePart(n, child *sitter.Node, i int) bool {
	if !child.IsNamed() {
		return true
	}
	switch n.FieldNameForChild(i) {
	case "name", "condition":
		return true
	}
	return false
}

// isDocstring matches a Python string that is the first statement of a
// module, class or function body.
func isDocstring(n *sitter.Node) bool {
	if n.Type() != "string" {
		return false
	}
	stmt := n.Parent()
	if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	body := stmt.Parent()
	if body == nil {
		return false
	}
	switch body.Type() {
	case "module":
	case "block":
		owner := body.Parent()
		if owner == nil || (owner.Type() != "function_definition" && owner.Type() != "class_definition") {
			return false
		}
	default:
		return false
	}
	first := body.NamedChild(0)
	return first != nil && first.Equal(stmt)
}

func isInterpolationNode(typ string) bool {
	return strings.Contains(typ, "interpolation") || typ == "template_substitution"
}
