package store

import "fmt"

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Fake (negative) file IDs are remapped to
// real IDs before their word counts are written. A file already cached
// under the same path is replaced.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64, len(batch.Files))

	// 1. Files
	for _, f := range batch.Files {
		realID, err := insertFileTx(tx, &f)
		if err != nil {
			return fmt.Errorf("commit batch: file %q: %w", f.Path, err)
		}
		fakeToReal[f.ID] = realID
	}

	// 2. Words
	for fakeID, words := range batch.Words {
		realID, ok := fakeToReal[fakeID]
		if !ok {
			return fmt.Errorf("commit batch: words for file_id=%d not in fakeToReal map (have %d files)", fakeID, len(batch.Files))
		}
		if err := insertWordsTx(tx, realID, words); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: commit: %w", err)
	}
	return nil
}
