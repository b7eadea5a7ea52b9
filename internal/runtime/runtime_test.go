package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Script resolution tests ---

func TestBuiltinScriptPath(t *testing.T) {
	t.Parallel()
	assert.True(t, IsBuiltin("builtin:rare"))
	assert.False(t, IsBuiltin("stop.risor"))
	assert.Equal(t, "stopwords/rare.risor", BuiltinScriptPath("builtin:rare"))
}

func TestLoadScript_BuiltinFromFS(t *testing.T) {
	t.Parallel()

	content := `x := 42`
	mapFS := fstest.MapFS{
		"stopwords/rare.risor": &fstest.MapFile{Data: []byte(content)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got, err := rt.LoadScript("builtin:rare")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLoadScript_BuiltinNotFound(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("", WithRuntimeFS(fstest.MapFS{}))
	_, err := rt.LoadScript("builtin:nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")

	_, err = NewRuntime("").LoadScript("builtin:rare")
	require.Error(t, err)
}

func TestLoadScript_FromDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := `z := 7`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.risor"), []byte(content), 0o644))

	got, err := NewRuntime(dir).LoadScript("test.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// Absolute paths ignore scriptsDir.
	got, err = NewRuntime("/elsewhere").LoadScript(filepath.Join(dir, "test.risor"))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestBuiltins_Sorted(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"stopwords/short.risor": &fstest.MapFile{Data: []byte(`[]`)},
		"stopwords/rare.risor":  &fstest.MapFile{Data: []byte(`[]`)},
		"stopwords/README":      &fstest.MapFile{Data: []byte(`x`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))
	assert.Equal(t, []string{"builtin:rare", "builtin:short"}, rt.Builtins())
	assert.Nil(t, NewRuntime("").Builtins())
}

// --- Risor integration tests (inline sources) ---

// runInline evaluates source with the standard globals and no importer.
func runInline(r *Runtime, source string, extraGlobals map[string]any) (object.Object, error) {
	return r.eval(context.Background(), source, "<inline>", nil, extraGlobals)
}

func TestRunInline_ReturnsFinalExpression(t *testing.T) {
	t.Parallel()
	result, err := runInline(NewRuntime(""), `1 + 1`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Interface())
}

func TestRunInline_ExtraGlobals(t *testing.T) {
	t.Parallel()
	result, err := runInline(NewRuntime(""), `greeting + " world"`, map[string]any{
		"greeting": object.NewString("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Interface())
}

func TestRunInline_KeywordsHostFunction(t *testing.T) {
	t.Parallel()
	script := `
kws := keywords("c")
assert(len(kws) > 0, "expected c keywords")
assert(len(keywords("cobol")) == 0, "unknown language has no keywords")
kws
`
	result, err := runInline(NewRuntime(""), script, nil)
	require.NoError(t, err)
	got, err := wordsFromResult(result)
	require.NoError(t, err)
	assert.Contains(t, got, "while")
}

func TestRunInline_SyntaxError(t *testing.T) {
	t.Parallel()
	_, err := runInline(NewRuntime(""), `x := (`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<inline>")
}

// --- StopWords ---

func TestStopWords_ListResult(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	script := `
out := []
for word, count := range words {
    if count > 2 {
        out.append(word)
    }
}
out
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.risor"), []byte(script), 0o644))

	got, err := NewRuntime(dir).StopWords(context.Background(), "common.risor",
		map[string]int{"int": 5, "return": 3, "main": 1}, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "return"}, got)
}

func TestStopWords_MapResultUsesKeys(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"stopwords/pick.risor": &fstest.MapFile{Data: []byte("m := {\"b\": 1, \"a\": true}\nm")},
	}
	got, err := NewRuntime("", WithRuntimeFS(mapFS)).StopWords(context.Background(), "builtin:pick", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestStopWords_LanguagesGlobal(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"stopwords/langs.risor": &fstest.MapFile{Data: []byte(`languages`)},
	}
	got, err := NewRuntime("", WithRuntimeFS(mapFS)).StopWords(context.Background(), "builtin:langs", nil, []string{"python", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "python"}, got)
}

func TestStopWords_BadResultType(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"stopwords/bad.risor":   &fstest.MapFile{Data: []byte(`42`)},
		"stopwords/mixed.risor": &fstest.MapFile{Data: []byte(`["a", 1]`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	_, err := rt.StopWords(context.Background(), "builtin:bad", nil, nil)
	require.Error(t, err)
	_, err = rt.StopWords(context.Background(), "builtin:mixed", nil, nil)
	require.Error(t, err)
}

func TestStopWords_NilResult(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"stopwords/none.risor": &fstest.MapFile{Data: []byte(`nil`)},
	}
	got, err := NewRuntime("", WithRuntimeFS(mapFS)).StopWords(context.Background(), "builtin:none", map[string]int{"x": 1}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStopWords_ImportsResolveBesideScript(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.risor"), []byte(`func pick() { return ["x"] }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.risor"), []byte("import lib\nlib.pick()"), 0o644))

	got, err := NewRuntime("").StopWords(context.Background(), filepath.Join(dir, "main.risor"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
}
