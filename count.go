package wordle

import (
	"context"
	"fmt"
	"time"

	"github.com/jward/wordle/internal/freq"
	"github.com/jward/wordle/internal/lexer"
	"github.com/jward/wordle/internal/source"
	"github.com/jward/wordle/internal/store"
)

// fileResult is the normalized map of one file.
type fileResult struct {
	words    freq.Map
	language string
	cached   bool
}

// countFile runs one file through classify -> filter -> accumulate ->
// normalize. ds may be nil (no cache). Unknown grammars and filtered-out
// languages yield an empty map without reading the file.
func (e *Engine) countFile(ctx context.Context, u unit, ds store.DataStore) (fileResult, error) {
	c, ok := e.registry.Lookup(u.path)
	if !ok {
		return fileResult{words: freq.Map{}}, nil
	}
	lang := c.Language()
	if e.languages != nil && !e.languages[lang] {
		return fileResult{words: freq.Map{}}, nil
	}

	src, err := source.Open(u.path)
	if err != nil {
		return fileResult{}, err
	}

	if ds != nil {
		words, hit, err := ds.CachedWords(src.Hash, lang)
		if err != nil {
			return fileResult{}, fmt.Errorf("cache lookup: %w", err)
		}
		if hit {
			if err := refreshRow(ds, u.key, lang, src.Hash, words); err != nil {
				return fileResult{}, err
			}
			return fileResult{words: freq.Map(words), language: lang, cached: true}, nil
		}
	}

	text, err := src.Text(e.decoder)
	if err != nil {
		return fileResult{}, err
	}
	words, err := e.countText(ctx, c, text)
	if err != nil {
		return fileResult{}, err
	}

	if ds != nil {
		if err := insertRow(ds, u.key, lang, src.Hash, words); err != nil {
			return fileResult{}, err
		}
	}
	return fileResult{words: words, language: lang}, nil
}

// refreshRow points the row for key at content served from the cache by
// hash. A hit may come from another path, so key's own row can be missing
// or still hold the words of its previous content.
func refreshRow(ds store.DataStore, key, lang, hash string, words map[string]int) error {
	cur, err := ds.FileByPath(key)
	if err != nil {
		return fmt.Errorf("cache lookup: %w", err)
	}
	if cur != nil && cur.Hash == hash && cur.Language == lang {
		return nil
	}
	return insertRow(ds, key, lang, hash, words)
}

func insertRow(ds store.DataStore, key, lang, hash string, words map[string]int) error {
	fileID, err := ds.InsertFile(&store.File{
		Path:        key,
		Language:    lang,
		Hash:        hash,
		LastIndexed: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	if err := ds.InsertWords(fileID, words); err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	return nil
}

// countText is the pure per-file fold.
func (e *Engine) countText(ctx context.Context, c lexer.Classifier, text string) (freq.Map, error) {
	tokens, err := c.Tokens(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	words := freq.Map{}
	for tok := range tokens {
		words.Add(e.filter.Apply(tok)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words.Normalize()
	return words, nil
}
