// Package wordle builds word-frequency models of source code. It lexes
// each file with a grammar inferred from its name, drops tokens that carry
// no vocabulary (whitespace, operators, structural punctuation, quote
// delimiters, comments by default), splits the rest into words and counts
// them.
//
// # Pipeline
//
// Every file passes through the same stages:
//
//  1. Classify: a [Classifier] chosen by file name turns the decoded text
//     into category-tagged tokens. The default backend is chroma; tree-sitter
//     grammars are available with [WithBackend].
//  2. Filter: a fixed decision table drops tokens by category and text.
//     Kept tokens are split on space, tab and newline.
//  3. Accumulate: words are counted into a [FrequencyMap], which is then
//     normalized (no empty or pure-punctuation words, trailing colons
//     folded into the bare word).
//
// Directory and repository counts merge per-file maps, then apply the
// exclusion stage once: caller stop-words, language keywords
// ([WithKeywords]) and words returned by stop-word scripts
// ([WithStopWordScripts]).
//
// # Usage
//
//	e, err := wordle.New(wordle.WithKeywords(true))
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	words, err := e.FrequencyFromDirectory(ctx, "path/to/project", nil, []string{"vendor"})
//	for _, entry := range words.Top(20) { ... }
//
// The package-level [FrequencyFromFile], [FrequencyFromDirectory] and
// [FrequencyFromRepository] use an Engine with default settings.
//
// # Exclusion patterns
//
// Directory exclusion patterns are regular expressions matched against
// the slash-separated path relative to the root, anchored at its start
// and ending on a segment boundary: "test" excludes "test/a.py" but not
// "testing/a.py". ".git" is always excluded.
//
// # Word cache
//
// [WithCache] stores per-file counts in SQLite keyed by content hash.
// Unchanged files are served from the cache on later runs; changing the
// backend, comment policy or encoding invalidates it. [Engine.Query]
// returns a [QueryBuilder] over the cached counts.
package wordle
