package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

// InsertFile stores f, replacing any earlier row (and its word counts) for
// the same path.
func (s *Store) InsertFile(f *File) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("insert file: begin: %w", err)
	}
	defer tx.Rollback()

	id, err := insertFileTx(tx, f)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert file: commit: %w", err)
	}
	f.ID = id
	return id, nil
}

func insertFileTx(tx *sql.Tx, f *File) (int64, error) {
	var existing int64
	err := tx.QueryRow("SELECT id FROM files WHERE path = ?", f.Path).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return 0, fmt.Errorf("insert file: lookup %q: %w", f.Path, err)
	default:
		if err := deleteFileTx(tx, existing); err != nil {
			return 0, err
		}
	}

	res, err := tx.Exec(
		"INSERT INTO files (path, language, hash, last_indexed) VALUES (?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FileByPath returns the row cached for path, or nil when there is none.
func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, language, hash, last_indexed FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// --- Word operations ---

func (s *Store) InsertWords(fileID int64, words map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("insert words: begin: %w", err)
	}
	defer tx.Rollback()
	if err := insertWordsTx(tx, fileID, words); err != nil {
		return err
	}
	return tx.Commit()
}

func insertWordsTx(tx *sql.Tx, fileID int64, words map[string]int) error {
	if len(words) == 0 {
		return nil
	}
	stmt, err := tx.Prepare("INSERT INTO words (file_id, word, count) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("insert words: prepare: %w", err)
	}
	defer stmt.Close()
	for w, n := range words {
		if _, err := stmt.Exec(fileID, w, n); err != nil {
			return fmt.Errorf("insert word %q: %w", w, err)
		}
	}
	return nil
}

// WordsByFile returns the cached counts of one file.
func (s *Store) WordsByFile(fileID int64) (map[string]int, error) {
	rows, err := s.db.Query("SELECT word, count FROM words WHERE file_id = ?", fileID)
	if err != nil {
		return nil, fmt.Errorf("words by file: %w", err)
	}
	defer rows.Close()
	words := make(map[string]int)
	for rows.Next() {
		var w string
		var n int
		if err := rows.Scan(&w, &n); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words[w] = n
	}
	return words, rows.Err()
}

// CachedWords returns the counts of any cached file whose content hash and
// classifier language match. ok is false on a miss.
func (s *Store) CachedWords(hash, language string) (words map[string]int, ok bool, err error) {
	var id int64
	err = s.db.QueryRow(
		"SELECT id FROM files WHERE hash = ? AND language = ? ORDER BY id LIMIT 1", hash, language,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cached words: %w", err)
	}
	words, err = s.WordsByFile(id)
	if err != nil {
		return nil, false, err
	}
	return words, true, nil
}
