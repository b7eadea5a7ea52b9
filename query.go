package wordle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/wordle/internal/store"
)

// ErrNoCache is returned by QueryBuilder methods on an engine built without
// WithCache.
var ErrNoCache = errors.New("wordle: no word cache configured")

// QueryBuilder answers read-only questions about the word cache.
type QueryBuilder struct {
	store *store.Store
}

// NewQueryBuilder creates a QueryBuilder over an already-open cache. It
// does not check the settings fingerprint.
func NewQueryBuilder(s *Store) *QueryBuilder {
	return &QueryBuilder{store: s}
}

// --- Common Types ---

// Pagination controls offset+limit paging on list results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize returns a Pagination with defaults applied and bounds enforced.
func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// PagedResult wraps a page of results with total count for pagination.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int // total matching results (before pagination)
}

// WordFilter restricts which cached files contribute to a word query.
type WordFilter struct {
	Languages  []string // match any of these languages
	PathPrefix string   // restrict to files under this path
}

// Summary is the per-language breakdown of the cache.
type Summary struct {
	Languages   []LanguageSummary
	Files       int
	Words       int
	UniqueWords int
}

// --- Queries ---

// TopWords returns words ranked by their summed count across matching
// files. Ties are broken by word.
func (q *QueryBuilder) TopWords(filter WordFilter, page Pagination) (*PagedResult[WordCount], error) {
	if q.store == nil {
		return nil, ErrNoCache
	}
	page = page.normalize()
	whereClause, args := filter.where()

	countSQL := "SELECT COUNT(DISTINCT w.word) FROM words w JOIN files f ON w.file_id = f.id " + whereClause
	var totalCount int
	if err := q.store.DB().QueryRow(countSQL, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("top words: count: %w", err)
	}

	dataSQL := fmt.Sprintf(
		`SELECT w.word, SUM(w.count) AS total FROM words w
		 JOIN files f ON w.file_id = f.id
		 %s
		 GROUP BY w.word
		 ORDER BY total DESC, w.word ASC
		 LIMIT ? OFFSET ?`,
		whereClause,
	)
	dataArgs := append(append([]any{}, args...), page.Limit, page.Offset)

	rows, err := q.store.DB().Query(dataSQL, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("top words: query: %w", err)
	}
	defer rows.Close()

	items := []WordCount{}
	for rows.Next() {
		var wc WordCount
		if err := rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, fmt.Errorf("top words: scan: %w", err)
		}
		items = append(items, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top words: rows: %w", err)
	}
	return &PagedResult[WordCount]{Items: items, TotalCount: totalCount}, nil
}

// FilesWithWord lists the cached files containing word, most occurrences
// first.
func (q *QueryBuilder) FilesWithWord(word string, page Pagination) (*PagedResult[FileCount], error) {
	if q.store == nil {
		return nil, ErrNoCache
	}
	page = page.normalize()

	var totalCount int
	if err := q.store.DB().QueryRow(
		"SELECT COUNT(*) FROM words WHERE word = ?", word,
	).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("files with word: count: %w", err)
	}

	rows, err := q.store.DB().Query(
		`SELECT f.path, f.language, w.count FROM words w
		 JOIN files f ON w.file_id = f.id
		 WHERE w.word = ?
		 ORDER BY w.count DESC, f.path ASC
		 LIMIT ? OFFSET ?`,
		word, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("files with word: query: %w", err)
	}
	defer rows.Close()

	items := []FileCount{}
	for rows.Next() {
		var fc FileCount
		if err := rows.Scan(&fc.Path, &fc.Language, &fc.Count); err != nil {
			return nil, fmt.Errorf("files with word: scan: %w", err)
		}
		items = append(items, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("files with word: rows: %w", err)
	}
	return &PagedResult[FileCount]{Items: items, TotalCount: totalCount}, nil
}

// Files lists cached files, optionally filtered by path prefix and language.
func (q *QueryBuilder) Files(pathPrefix, language string, page Pagination) (*PagedResult[File], error) {
	if q.store == nil {
		return nil, ErrNoCache
	}
	page = page.normalize()

	var where []string
	var args []any
	if pathPrefix != "" {
		where = append(where, "path LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(normalizePathPrefix(pathPrefix))+"%")
	}
	if language != "" {
		where = append(where, "language = ?")
		args = append(args, language)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var totalCount int
	if err := q.store.DB().QueryRow("SELECT COUNT(*) FROM files "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("files: count: %w", err)
	}

	dataSQL := fmt.Sprintf(
		`SELECT id, path, language, hash, last_indexed FROM files %s ORDER BY path LIMIT ? OFFSET ?`,
		whereClause,
	)
	dataArgs := append(append([]any{}, args...), page.Limit, page.Offset)

	rows, err := q.store.DB().Query(dataSQL, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("files: query: %w", err)
	}
	defer rows.Close()

	items := []File{}
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("files: scan: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("files: rows: %w", err)
	}
	return &PagedResult[File]{Items: items, TotalCount: totalCount}, nil
}

// Summary aggregates the cache per language. Languages are sorted by name.
func (q *QueryBuilder) Summary() (*Summary, error) {
	if q.store == nil {
		return nil, ErrNoCache
	}
	summary := &Summary{Languages: []LanguageSummary{}}

	rows, err := q.store.DB().Query(
		`SELECT f.language,
		        COUNT(DISTINCT f.id),
		        COALESCE(SUM(w.count), 0),
		        COUNT(DISTINCT w.word)
		 FROM files f
		 LEFT JOIN words w ON w.file_id = f.id
		 GROUP BY f.language
		 ORDER BY f.language`,
	)
	if err != nil {
		return nil, fmt.Errorf("summary: languages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ls LanguageSummary
		if err := rows.Scan(&ls.Language, &ls.Files, &ls.Words, &ls.UniqueWords); err != nil {
			return nil, fmt.Errorf("summary: scan language: %w", err)
		}
		summary.Languages = append(summary.Languages, ls)
		summary.Files += ls.Files
		summary.Words += ls.Words
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary: language rows: %w", err)
	}

	// Unique words across languages are not the sum of per-language counts.
	if err := q.store.DB().QueryRow(
		"SELECT COUNT(DISTINCT word) FROM words",
	).Scan(&summary.UniqueWords); err != nil {
		return nil, fmt.Errorf("summary: unique words: %w", err)
	}
	return summary, nil
}

// --- Internal Helpers ---

func (f WordFilter) where() (string, []any) {
	var where []string
	var args []any
	if len(f.Languages) > 0 {
		clause, langArgs := store.InClause("f.language", f.Languages)
		where = append(where, clause)
		args = append(args, langArgs...)
	}
	if f.PathPrefix != "" {
		where = append(where, "f.path LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(normalizePathPrefix(f.PathPrefix))+"%")
	}
	if len(where) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(where, " AND "), args
}

// normalizePathPrefix ensures a path prefix ends with "/" for correct LIKE matching.
// "internal/store" -> "internal/store/" to prevent matching "internal/store_utils/".
func normalizePathPrefix(prefix string) string {
	if !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

// escapeLike escapes SQL LIKE special characters (% and _) with backslash.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
