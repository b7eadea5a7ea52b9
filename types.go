package wordle

import (
	"github.com/jward/wordle/internal/filter"
	"github.com/jward/wordle/internal/freq"
	"github.com/jward/wordle/internal/lexer"
	"github.com/jward/wordle/internal/store"
)

// Public type aliases for internal types used in the Engine and
// QueryBuilder APIs. These are Go type aliases (=), identical to the
// internal types at compile time.

type FrequencyMap = freq.Map
type Entry = freq.Entry
type CommentPolicy = filter.Policy
type Classifier = lexer.Classifier
type Token = lexer.Token
type Registry = lexer.Registry
type Store = store.Store
type File = store.File
type WordCount = store.WordCount
type FileCount = store.FileCount
type LanguageSummary = store.LanguageSummary

const (
	DropComments  = filter.DropComments
	SplitComments = filter.SplitComments

	BackendChroma     = lexer.BackendChroma
	BackendTreeSitter = lexer.BackendTreeSitter
)

// Merge sums frequency maps key-wise into a new map.
func Merge(maps ...FrequencyMap) FrequencyMap {
	return freq.Merge(maps...)
}

// FileEvent describes one file handled by a count. Events are delivered
// from a single goroutine in completion order.
type FileEvent struct {
	Path     string
	Language string // "" when no classifier matched
	Cached   bool   // served from the word cache
	Words    int    // distinct words contributed
}

// ParseCommentPolicy parses "drop" or "split".
func ParseCommentPolicy(s string) (CommentPolicy, error) {
	return filter.ParsePolicy(s)
}
