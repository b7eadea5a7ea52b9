package lexer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Backend names accepted by NewRegistryForBackend.
const (
	BackendChroma     = "chroma"
	BackendTreeSitter = "treesitter"
)

// Resolver maps a file name to a classifier. It reports false when no
// lexical grammar is known for the name.
type Resolver func(filename string) (Classifier, bool)

type registration struct {
	pattern    string
	classifier Classifier
}

// Registry maps file-name patterns to classifiers. Explicit registrations
// are consulted newest first; the fallback resolver runs when none match.
// Lookups are memoized by base name.
type Registry struct {
	mu       sync.RWMutex
	entries  []registration
	fallback Resolver
	cache    *lru.Cache[string, Classifier]
}

const lookupCacheSize = 512

// NewRegistry returns an empty Registry with no fallback.
func NewRegistry() *Registry {
	cache, err := lru.New[string, Classifier](lookupCacheSize)
	if err != nil {
		panic(fmt.Sprintf("lexer: lookup cache: %v", err))
	}
	return &Registry{cache: cache}
}

// DefaultRegistry resolves every file name through chroma's lexer set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.SetFallback(ChromaResolver)
	return r
}

// TreeSitterRegistry registers tree-sitter grammars for their extensions
// and falls back to chroma for everything else.
func TreeSitterRegistry() *Registry {
	r := DefaultRegistry()
	exts := make([]string, 0, len(extToLanguage))
	for ext := range extToLanguage {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		c, ok := NewTreeSitter(extToLanguage[ext])
		if !ok {
			continue
		}
		r.Register("*"+ext, c)
	}
	return r
}

// NewRegistryForBackend returns the registry for a backend name.
func NewRegistryForBackend(backend string) (*Registry, error) {
	switch strings.ToLower(backend) {
	case "", BackendChroma:
		return DefaultRegistry(), nil
	case BackendTreeSitter:
		return TreeSitterRegistry(), nil
	default:
		return nil, fmt.Errorf("lexer: unknown backend %q (want %s or %s)", backend, BackendChroma, BackendTreeSitter)
	}
}

// Register adds a classifier for file names matching pattern (a
// filepath.Match glob such as "*.go" or "Makefile").
func (r *Registry) Register(pattern string, c Classifier) {
	r.mu.Lock()
	r.entries = append(r.entries, registration{pattern: pattern, classifier: c})
	r.mu.Unlock()
	r.cache.Purge()
}

// SetFallback sets the resolver used when no registered pattern matches.
func (r *Registry) SetFallback(f Resolver) {
	r.mu.Lock()
	r.fallback = f
	r.mu.Unlock()
	r.cache.Purge()
}

// Lookup returns the classifier for path, inferred from its base name.
// Returns (nil, false) for unrecognized names.
func (r *Registry) Lookup(path string) (Classifier, bool) {
	base := filepath.Base(path)
	if c, ok := r.cache.Get(base); ok {
		return c, c != nil
	}
	c := r.resolve(base)
	r.cache.Add(base, c)
	return c, c != nil
}

func (r *Registry) resolve(base string) Classifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(base)
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if matchName(e.pattern, base) || matchName(e.pattern, lower) {
			return e.classifier
		}
	}
	if r.fallback != nil {
		if c, ok := r.fallback(base); ok {
			return c
		}
	}
	return nil
}

// Signature identifies what the registry resolves: every pattern with the
// language it maps to, plus whether a fallback is set. Registries with
// equal signatures classify the same names the same way.
func (r *Registry) Signature() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parts := make([]string, 0, len(r.entries)+1)
	for _, e := range r.entries {
		parts = append(parts, e.pattern+"="+e.classifier.Language())
	}
	if r.fallback != nil {
		parts = append(parts, "fallback")
	}
	return strings.Join(parts, ",")
}

func matchName(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
