package store

// DataStore is the interface the counting pipeline writes through. Both
// Store (direct SQLite) and BatchedStore (in-memory buffering for parallel
// counting) implement it.
type DataStore interface {
	// InsertFile records a file and returns its ID.
	InsertFile(f *File) (int64, error)
	// InsertWords records the word counts of a file returned by InsertFile.
	InsertWords(fileID int64, words map[string]int) error

	// CachedWords is read by workers to skip recounting unchanged content.
	CachedWords(hash, language string) (map[string]int, bool, error)
	// FileByPath returns the cached row for path, or nil when there is none.
	FileByPath(path string) (*File, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
