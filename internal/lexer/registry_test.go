package lexer

import (
	"context"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClassifier returns a fixed token list.
type fakeClassifier struct {
	lang string
	toks []Token
}

func (f *fakeClassifier) Language() string { return f.lang }

func (f *fakeClassifier) Tokens(context.Context, string) (iter.Seq[Token], error) {
	return slices.Values(f.toks), nil
}

func TestRegistry_EmptyHasNoMatches(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	c, ok := r.Lookup("/src/main.go")
	assert.False(t, ok)
	assert.Nil(t, c)
}

func TestRegistry_RegisterMatchesBaseName(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	fake := &fakeClassifier{lang: "fake"}
	r.Register("*.fk", fake)

	c, ok := r.Lookup("/a/b/thing.fk")
	require.True(t, ok)
	assert.Equal(t, "fake", c.Language())

	_, ok = r.Lookup("/a/b/thing.fkx")
	assert.False(t, ok)
}

func TestRegistry_CaseInsensitiveFallbackOnLowercase(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("*.fk", &fakeClassifier{lang: "fake"})

	_, ok := r.Lookup("THING.FK")
	assert.True(t, ok)
}

func TestRegistry_NewestRegistrationWins(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("*.fk", &fakeClassifier{lang: "old"})
	r.Register("*.fk", &fakeClassifier{lang: "new"})

	c, ok := r.Lookup("x.fk")
	require.True(t, ok)
	assert.Equal(t, "new", c.Language())
}

func TestRegistry_RegisterPurgesMemoizedMiss(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	_, ok := r.Lookup("x.fk")
	require.False(t, ok)

	r.Register("*.fk", &fakeClassifier{lang: "fake"})
	_, ok = r.Lookup("x.fk")
	assert.True(t, ok)
}

func TestRegistry_FallbackUsedWhenNoPatternMatches(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	calls := 0
	r.SetFallback(func(name string) (Classifier, bool) {
		calls++
		if name == "Makefile" {
			return &fakeClassifier{lang: "make"}, true
		}
		return nil, false
	})

	c, ok := r.Lookup("/repo/Makefile")
	require.True(t, ok)
	assert.Equal(t, "make", c.Language())

	// Memoized by base name.
	_, _ = r.Lookup("/other/Makefile")
	assert.Equal(t, 1, calls)

	_, ok = r.Lookup("/repo/README")
	assert.False(t, ok)
}

func TestRegistry_Signature(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("*.a", &fakeClassifier{lang: "alpha"})
	assert.Equal(t, "*.a=alpha", r.Signature())

	r.SetFallback(ChromaResolver)
	assert.Equal(t, "*.a=alpha,fallback", r.Signature())
	assert.Equal(t, "fallback", DefaultRegistry().Signature())
	assert.Equal(t, TreeSitterRegistry().Signature(), TreeSitterRegistry().Signature())
	assert.NotEqual(t, DefaultRegistry().Signature(), TreeSitterRegistry().Signature())
}

func TestNewRegistryForBackend(t *testing.T) {
	t.Parallel()

	r, err := NewRegistryForBackend("")
	require.NoError(t, err)
	assert.Equal(t, "fallback", r.Signature())

	r, err = NewRegistryForBackend("TreeSitter")
	require.NoError(t, err)
	assert.Contains(t, r.Signature(), "*.py=python")

	_, err = NewRegistryForBackend("pygments")
	require.Error(t, err)
}

func TestTreeSitterRegistry_PrefersGrammarAndFallsBack(t *testing.T) {
	t.Parallel()
	r := TreeSitterRegistry()

	c, ok := r.Lookup("app.py")
	require.True(t, ok)
	_, isTS := c.(*treeSitterClassifier)
	assert.True(t, isTS)
	assert.Equal(t, "python", c.Language())

	// No tree-sitter grammar for shell scripts; chroma answers instead.
	c, ok = r.Lookup("build.sh")
	require.True(t, ok)
	_, isChroma := c.(*chromaClassifier)
	assert.True(t, isChroma)
}

func TestKeywords(t *testing.T) {
	t.Parallel()
	assert.Contains(t, Keywords("c"), "int")
	assert.Contains(t, Keywords("cpp"), "nullptr")
	assert.Contains(t, Keywords("python"), "def")
	assert.Contains(t, Keywords("go"), "func")
	assert.Nil(t, Keywords("cobol"))

	kw := Keywords("c")
	kw[0] = "mutated"
	assert.NotContains(t, Keywords("c"), "mutated")
}

func TestCategory_In(t *testing.T) {
	t.Parallel()
	assert.True(t, CommentSingle.In(Comment))
	assert.True(t, Comment.In(Comment))
	assert.True(t, StringDouble.In(String))
	assert.False(t, String.In(StringDouble))
	assert.False(t, Keyword.In(Comment))
	// Prefix without a dot is not a subkind.
	assert.False(t, Category("Stringy").In(String))
}
