package wordle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/wordle/internal/checkout"
	"github.com/jward/wordle/internal/filter"
	"github.com/jward/wordle/internal/freq"
	"github.com/jward/wordle/internal/lexer"
	"github.com/jward/wordle/internal/runtime"
	"github.com/jward/wordle/internal/source"
	"github.com/jward/wordle/internal/store"
	"github.com/jward/wordle/internal/walk"
	"github.com/jward/wordle/scripts"
)

// cacheSchemaVersion is folded into the settings fingerprint so that a
// change in how per-file counts are produced invalidates old caches.
const cacheSchemaVersion = "1"

// Engine orchestrates the wordle pipeline: file discovery, classification,
// filtering, counting, exclusion, and optional caching.
type Engine struct {
	registry *lexer.Registry
	backend  string
	filter   filter.Filter
	encoding string
	decoder  *source.Decoder

	languages map[string]bool // nil means all languages
	keywords  bool

	stopScripts []string
	scriptsDir  string
	runtime     *runtime.Runtime

	checkout   checkout.Provider
	cloneDepth int

	cachePath string
	store     *store.Store // nil when caching is disabled

	// useParallel enables the worker-pool count; workers caps its size
	// (0 means one per CPU).
	useParallel bool
	workers     int

	progress func(FileEvent)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which classifier languages the Engine counts.
// Files in other languages contribute nothing.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[strings.ToLower(lang)] = true
		}
	}
}

// WithParallel controls the parallel count. When true (default), files are
// counted by a worker pool and merged by a single owner goroutine. Set to
// false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithWorkers sets the worker pool size. n <= 0 means one per CPU; n == 1
// is equivalent to WithParallel(false).
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
		if n == 1 {
			e.useParallel = false
		}
	}
}

// WithBackend selects the classifier backend ("chroma" or "treesitter").
// Ignored when WithRegistry is also given.
func WithBackend(backend string) Option {
	return func(e *Engine) {
		e.backend = strings.ToLower(backend)
	}
}

// WithRegistry supplies the filename-to-classifier registry directly.
func WithRegistry(r *lexer.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithCommentPolicy sets how Comment tokens are treated.
func WithCommentPolicy(p CommentPolicy) Option {
	return func(e *Engine) {
		e.filter.Policy = p
	}
}

// WithDocstrings controls whether documentation strings (String.Doc
// tokens, such as Python docstrings) are counted. They are by default.
func WithDocstrings(keep bool) Option {
	return func(e *Engine) {
		e.filter.DropDocstrings = !keep
	}
}

// WithEncoding sets the IANA encoding used to decode every file.
func WithEncoding(name string) Option {
	return func(e *Engine) {
		e.encoding = name
	}
}

// WithKeywords adds the reserved words of every language seen during a
// count to the exclusion set.
func WithKeywords(enabled bool) Option {
	return func(e *Engine) {
		e.keywords = enabled
	}
}

// WithStopWordScripts runs Risor scripts over each merged result. Names
// prefixed with "builtin:" resolve to the embedded scripts; other names
// are paths, relative to dir when dir is non-empty.
func WithStopWordScripts(dir string, names ...string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
		e.stopScripts = append(e.stopScripts, names...)
	}
}

// WithCheckout replaces the repository checkout provider (an in-process
// go-git clone by default).
func WithCheckout(p checkout.Provider) Option {
	return func(e *Engine) {
		e.checkout = p
	}
}

// WithCloneDepth sets the clone depth for repository counts. 0 keeps the
// default: depth 1 without a ref, a full clone with one.
func WithCloneDepth(depth int) Option {
	return func(e *Engine) {
		e.cloneDepth = depth
	}
}

// WithCache enables the SQLite word cache at dbPath.
func WithCache(dbPath string) Option {
	return func(e *Engine) {
		e.cachePath = dbPath
	}
}

// WithProgress registers a callback invoked once per counted file.
func WithProgress(fn func(FileEvent)) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// New creates an Engine. With no options it uses the chroma backend, drops
// comments, decodes strict UTF-8, counts in parallel and caches nothing.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		backend:     lexer.BackendChroma,
		filter:      filter.New(filter.DropComments),
		encoding:    source.DefaultEncoding,
		useParallel: true, // default to parallel counting
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		r, err := lexer.NewRegistryForBackend(e.backend)
		if err != nil {
			return nil, fmt.Errorf("wordle: %w", err)
		}
		e.registry = r
	}

	dec, err := source.NewDecoder(e.encoding)
	if err != nil {
		return nil, fmt.Errorf("wordle: %w", err)
	}
	e.decoder = dec

	if e.checkout == nil {
		e.checkout = checkout.NewGit()
	}
	if e.cloneDepth < 0 {
		return nil, fmt.Errorf("wordle: clone depth must be >= 0, got %d", e.cloneDepth)
	}

	e.runtime = runtime.NewRuntime(e.scriptsDir, runtime.WithRuntimeFS(scripts.FS))
	for _, name := range e.stopScripts {
		if _, err := e.runtime.LoadScript(name); err != nil {
			return nil, fmt.Errorf("wordle: stop-word script: %w", err)
		}
	}

	if e.cachePath != "" {
		if err := e.openCache(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) openCache() error {
	s, err := store.NewStore(e.cachePath)
	if err != nil {
		return fmt.Errorf("wordle: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return fmt.Errorf("wordle: migrate: %w", err)
	}
	if _, err := s.SyncFingerprint(e.fingerprint()); err != nil {
		s.Close()
		return fmt.Errorf("wordle: cache fingerprint: %w", err)
	}
	e.store = s
	return nil
}

// fingerprint hashes every setting that changes per-file counts.
func (e *Engine) fingerprint() string {
	docstrings := "keep"
	if e.filter.DropDocstrings {
		docstrings = "drop"
	}
	return store.ComputeFingerprint(map[string]string{
		"backend":    e.backend,
		"comments":   e.filter.Policy.String(),
		"docstrings": docstrings,
		"encoding":   e.decoder.Name(),
		"registry":   e.registry.Signature(),
		"schema":     cacheSchemaVersion,
	})
}

// Close releases the Engine's cache database, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Store returns the underlying cache Store, or nil when caching is off.
func (e *Engine) Store() *Store {
	return e.store
}

// Registry returns the filename-to-classifier registry in use.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Query returns a new QueryBuilder over the word cache.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// FrequencyFromFile counts the words of a single file. A file whose name
// matches no grammar yields an empty map.
func (e *Engine) FrequencyFromFile(ctx context.Context, path string, excludeWords []string) (FrequencyMap, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("wordle: %w: %w", ErrIO, err)
	}
	t, err := e.count(ctx, []unit{{path: abs, key: abs}})
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, t, excludeWords)
}

// FrequencyFromDirectory counts every regular file under path whose
// root-relative path is not excluded by excludeDirs (see package docs for
// pattern semantics). ".git" is always excluded.
func (e *Engine) FrequencyFromDirectory(ctx context.Context, path string, excludeWords, excludeDirs []string) (FrequencyMap, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("wordle: %w: %w", ErrIO, err)
	}
	units, err := e.discover(ctx, root, excludeDirs, "")
	if err != nil {
		return nil, err
	}
	t, err := e.count(ctx, units)
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, t, excludeWords)
}

// FrequencyFromRepository checks url out at ref (the default branch tip
// when empty) into a temporary directory, counts it like
// FrequencyFromDirectory, and removes the checkout.
func (e *Engine) FrequencyFromRepository(ctx context.Context, url, ref string, excludeWords, excludeDirs []string) (FrequencyMap, error) {
	dir, cleanup, err := checkout.Temp(ctx, e.checkout, checkout.Request{URL: url, Ref: ref, Depth: e.cloneDepth})
	defer cleanup()
	if err != nil {
		return nil, fmt.Errorf("wordle: checkout %s: %w", url, err)
	}

	// Cache rows are keyed by the repository location rather than the
	// temporary checkout path.
	prefix := strings.TrimSuffix(url, "/")
	if ref != "" {
		prefix += "@" + ref
	}
	units, err := e.discover(ctx, dir, excludeDirs, prefix)
	if err != nil {
		return nil, err
	}
	t, err := e.count(ctx, units)
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, t, excludeWords)
}

// unit is one file to count. key names it in the cache and in progress
// events.
type unit struct {
	path string
	key  string
}

// discover lists the files under root. When keyPrefix is set, keys are
// keyPrefix + "/" + the root-relative path; otherwise the absolute path.
func (e *Engine) discover(ctx context.Context, root string, excludeDirs []string, keyPrefix string) ([]unit, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("wordle: %w: %w", ErrIO, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("wordle: %w: %w", ErrIO, &fs.PathError{Op: "walk", Path: root, Err: errors.New("not a directory")})
	}

	m, err := walk.NewMatcher(root, excludeDirs)
	if err != nil {
		return nil, fmt.Errorf("wordle: %w", err)
	}
	paths, err := walk.Files(ctx, root, m)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("wordle: %w", ctxErr)
		}
		return nil, fmt.Errorf("wordle: %w: %w", ErrIO, err)
	}

	units := make([]unit, len(paths))
	for i, p := range paths {
		key := p
		if keyPrefix != "" {
			rel, _ := filepath.Rel(root, p)
			key = keyPrefix + "/" + filepath.ToSlash(rel)
		}
		units[i] = unit{path: p, key: key}
	}
	return units, nil
}

// tally is the merged result of a count before exclusion.
type tally struct {
	words     freq.Map
	languages map[string]bool
}

func (t *tally) sortedLanguages() []string {
	langs := make([]string, 0, len(t.languages))
	for l := range t.languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

func (e *Engine) count(ctx context.Context, units []unit) (*tally, error) {
	if e.useParallel && len(units) > 1 {
		return e.countParallel(ctx, units)
	}
	return e.countSerial(ctx, units)
}

// countSerial folds files one at a time, writing cache rows directly to
// the Store.
func (e *Engine) countSerial(ctx context.Context, units []unit) (*tally, error) {
	t := &tally{words: freq.Map{}, languages: map[string]bool{}}
	var ds store.DataStore
	if e.store != nil {
		ds = e.store
	}
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("wordle: %w", err)
		}
		res, err := e.countFile(ctx, u, ds)
		if err != nil {
			return nil, fmt.Errorf("wordle: count %s: %w", u.path, err)
		}
		t.add(res)
		e.emit(u, res)
	}
	return t, nil
}

func (t *tally) add(res fileResult) {
	t.words.AddAll(res.words)
	if res.language != "" {
		t.languages[res.language] = true
	}
}

func (e *Engine) emit(u unit, res fileResult) {
	if e.progress == nil {
		return
	}
	e.progress(FileEvent{Path: u.key, Language: res.language, Cached: res.cached, Words: len(res.words)})
}

// finish applies the exclusion stage exactly once: caller words, language
// keywords, then scripted stop-words, all computed against the merged map.
func (e *Engine) finish(ctx context.Context, t *tally, excludeWords []string) (FrequencyMap, error) {
	exclude := append([]string(nil), excludeWords...)

	langs := t.sortedLanguages()
	if e.keywords {
		for _, lang := range langs {
			exclude = append(exclude, lexer.Keywords(lang)...)
		}
	}

	for _, name := range e.stopScripts {
		words, err := e.runtime.StopWords(ctx, name, t.words, langs)
		if err != nil {
			return nil, fmt.Errorf("wordle: stop-words: %w", err)
		}
		exclude = append(exclude, words...)
	}

	t.words.Exclude(exclude...)
	return t.words, nil
}
