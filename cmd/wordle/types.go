package main

// CLIResult is the top-level JSON envelope for every command.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIWord is a word and its count.
type CLIWord struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CLIFileCount is a cached file containing a queried word.
type CLIFileCount struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// CLILanguageSummary is one language's share of the cache.
type CLILanguageSummary struct {
	Language    string `json:"language"`
	Files       int    `json:"files"`
	Words       int    `json:"words"`
	UniqueWords int    `json:"unique_words"`
}

// CLISummary is a JSON-friendly cache summary.
type CLISummary struct {
	Languages   []CLILanguageSummary `json:"languages"`
	Files       int                  `json:"files"`
	Words       int                  `json:"words"`
	UniqueWords int                  `json:"unique_words"`
}

// CLILanguage describes the extra support for one language.
type CLILanguage struct {
	Name       string `json:"name"`
	Keywords   int    `json:"keywords"`
	TreeSitter bool   `json:"tree_sitter"`
}

// CLIScript is a builtin stop-word script.
type CLIScript struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
