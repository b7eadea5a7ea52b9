package store

import (
	"fmt"
	"maps"
	"sync"
)

// BatchedStore buffers file and word inserts in memory using fake
// (negative) file IDs. It implements DataStore so workers can write to it
// without knowing whether they're hitting SQLite or an in-memory buffer.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
// CachedWords and FileByPath are passed through to the underlying Store,
// which is safe for concurrent reads.
type BatchedStore struct {
	store *Store // for read passthrough
	mu    sync.Mutex

	Files []File
	Words map[int64]map[string]int // keyed by fake file ID

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:      s,
		Words:      make(map[int64]map[string]int),
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertFile(f *File) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	f.ID = fakeID
	b.Files = append(b.Files, *f)
	return fakeID, nil
}

func (b *BatchedStore) InsertWords(fileID int64, words map[string]int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.Words[fileID]; dup {
		return fmt.Errorf("batched words: file %d already has counts", fileID)
	}
	b.Words[fileID] = maps.Clone(words)
	return nil
}

// CachedWords passes through to the underlying Store.
func (b *BatchedStore) CachedWords(hash, language string) (map[string]int, bool, error) {
	return b.store.CachedWords(hash, language)
}

// FileByPath passes through to the underlying Store. Rows buffered in this
// batch are not visible.
func (b *BatchedStore) FileByPath(path string) (*File, error) {
	return b.store.FileByPath(path)
}

// Len reports the number of buffered files.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Files)
}
