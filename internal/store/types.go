package store

import "time"

// File is one cached source file. Hash is the hex sha256 of its raw bytes;
// Language is the classifier language that produced its word counts.
type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LastIndexed time.Time
}

// WordCount is a word with its summed occurrence count.
type WordCount struct {
	Word  string
	Count int
}

// FileCount is a file in which a word occurs, with the per-file count.
type FileCount struct {
	Path     string
	Language string
	Count    int
}

// LanguageSummary aggregates cached files of one language.
type LanguageSummary struct {
	Language    string
	Files       int
	Words       int // total occurrences
	UniqueWords int
}
