package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jward/wordle/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "sub", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	// TempDir has no .git directory anywhere in its ancestry
	// (unless /tmp itself is a repo, which would be unusual).
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestResolveCachePath(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	t.Chdir(sub)

	got, err := resolveCachePath(".wordle/cache.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".wordle", "cache.db"), got)

	abs := filepath.Join(root, "abs.db")
	got, err = resolveCachePath(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	got, err = resolveCachePath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// --- In-process command tests ---

// cliOutput mirrors CLIResult with concrete result types for decoding.
type cliOutput[T any] struct {
	Command    string `json:"command"`
	Results    T      `json:"results"`
	TotalCount *int   `json:"total_count"`
	Error      string `json:"error"`
}

// runCLI executes args against a fresh cli with an empty config file, so a
// config in the working directory never leaks into the test.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, c *cli, err error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "wordle.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))

	var out, errOut bytes.Buffer
	c = newCLI(&out, &errOut)
	root := c.rootCmd()
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), c, err
}

func decode[T any](t *testing.T, s string) cliOutput[T] {
	t.Helper()
	var out cliOutput[T]
	require.NoError(t, json.Unmarshal([]byte(s), &out), s)
	return out
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

var pyTree = map[string]string{
	"a.py":          "def foo():\n    pass  # comment\n",
	"pkg/b.py":      "def bar():\n    pass\n",
	"tests/test.py": "def skipped():\n    pass\n",
}

func TestFileCommand_JSON(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)

	stdout, _, _, err := runCLI(t, "file", filepath.Join(dir, "a.py"))
	require.NoError(t, err)

	out := decode[[]CLIWord](t, stdout)
	assert.Equal(t, "file", out.Command)
	assert.Empty(t, out.Error)
	assert.Equal(t, []CLIWord{
		{Word: "def", Count: 1},
		{Word: "foo", Count: 1},
		{Word: "pass", Count: 1},
	}, out.Results)
	require.NotNil(t, out.TotalCount)
	assert.Equal(t, 3, *out.TotalCount)
}

func TestFileCommand_ExcludeWordAndKeywords(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)

	stdout, _, _, err := runCLI(t, "file", filepath.Join(dir, "a.py"), "--keywords")
	require.NoError(t, err)
	assert.Equal(t, []CLIWord{{Word: "foo", Count: 1}}, decode[[]CLIWord](t, stdout).Results)

	stdout, _, _, err = runCLI(t, "file", filepath.Join(dir, "a.py"), "--exclude-word", "def,pass")
	require.NoError(t, err)
	assert.Equal(t, []CLIWord{{Word: "foo", Count: 1}}, decode[[]CLIWord](t, stdout).Results)
}

func TestFileCommand_Docstrings(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"doc.py": "def foo():\n    \"\"\"Return the answer.\"\"\"\n    return foo\n",
	})
	words := func(args ...string) map[string]int {
		stdout, _, _, err := runCLI(t, append([]string{"file", filepath.Join(dir, "doc.py")}, args...)...)
		require.NoError(t, err)
		m := map[string]int{}
		for _, w := range decode[[]CLIWord](t, stdout).Results {
			m[w.Word] = w.Count
		}
		return m
	}

	assert.Equal(t, 1, words()["the"])
	assert.Equal(t, map[string]int{"def": 1, "foo": 2, "return": 1}, words("--docstrings=false"))
}

func TestDirCommand_ExcludeDir(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)

	stdout, _, _, err := runCLI(t, "dir", dir, "--exclude-dir", "tests", "--serial")
	require.NoError(t, err)

	out := decode[[]CLIWord](t, stdout)
	assert.Equal(t, "dir", out.Command)
	assert.Equal(t, []CLIWord{
		{Word: "def", Count: 2},
		{Word: "pass", Count: 2},
		{Word: "bar", Count: 1},
		{Word: "foo", Count: 1},
	}, out.Results)
}

func TestDirCommand_Top(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)

	stdout, _, _, err := runCLI(t, "dir", dir, "--top", "1")
	require.NoError(t, err)

	out := decode[[]CLIWord](t, stdout)
	assert.Equal(t, []CLIWord{{Word: "def", Count: 3}}, out.Results)
	require.NotNil(t, out.TotalCount)
	assert.Equal(t, 5, *out.TotalCount)
}

func TestDirCommand_TextFormat(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)

	stdout, _, _, err := runCLI(t, "--format", "text", "dir", dir, "--top", "2", "--exclude-dir", "tests")
	require.NoError(t, err)
	assert.Contains(t, stdout, "WORD")
	assert.Contains(t, stdout, "COUNT")
	assert.Contains(t, stdout, "def")
	assert.Contains(t, stdout, "Showing 2 of 4 results")
	assert.NotContains(t, stdout, "skipped")
}

func TestInvalidFormat(t *testing.T) {
	t.Parallel()
	stdout, _, c, err := runCLI(t, "--format", "xml", "languages")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Empty(t, stdout)
	assert.False(t, c.errorHandled)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Parallel()
	_, _, _, err := runCLI(t, "--log-level", "verbose", "languages")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestErrorEnvelope_JSON(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "missing.py")

	stdout, _, c, err := runCLI(t, "file", missing)
	require.Error(t, err)
	assert.True(t, c.errorHandled)

	out := decode[any](t, stdout)
	assert.Equal(t, "file", out.Command)
	assert.Contains(t, out.Error, "missing.py")
}

func TestErrorEnvelope_Text(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "missing.py")

	stdout, stderr, c, err := runCLI(t, "--format", "text", "file", missing)
	require.Error(t, err)
	assert.True(t, c.errorHandled)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error:")
}

func TestInvalidCommentsFlag(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)

	stdout, _, _, err := runCLI(t, "file", filepath.Join(dir, "a.py"), "--comments", "keep")
	require.Error(t, err)
	assert.NotEmpty(t, decode[any](t, stdout).Error)
}

func TestQueryCommands_AfterCachedDir(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)
	cache := filepath.Join(t.TempDir(), "cache.db")

	_, _, _, err := runCLI(t, "dir", dir, "--exclude-dir", "tests", "--cache", cache)
	require.NoError(t, err)

	stdout, _, _, err := runCLI(t, "query", "top", "--cache", cache)
	require.NoError(t, err)
	top := decode[[]CLIWord](t, stdout)
	assert.Equal(t, "top", top.Command)
	assert.Equal(t, []CLIWord{
		{Word: "def", Count: 2},
		{Word: "pass", Count: 2},
		{Word: "bar", Count: 1},
		{Word: "foo", Count: 1},
	}, top.Results)
	require.NotNil(t, top.TotalCount)
	assert.Equal(t, 4, *top.TotalCount)

	stdout, _, _, err = runCLI(t, "query", "files", "foo", "--cache", cache)
	require.NoError(t, err)
	files := decode[[]CLIFileCount](t, stdout)
	require.Len(t, files.Results, 1)
	assert.Equal(t, "python", files.Results[0].Language)
	assert.Equal(t, 1, files.Results[0].Count)
	assert.Equal(t, "a.py", filepath.Base(files.Results[0].Path))

	stdout, _, _, err = runCLI(t, "query", "summary", "--cache", cache)
	require.NoError(t, err)
	summary := decode[CLISummary](t, stdout)
	assert.Equal(t, 2, summary.Results.Files)
	assert.Equal(t, 6, summary.Results.Words)
	assert.Equal(t, 4, summary.Results.UniqueWords)
	require.Len(t, summary.Results.Languages, 1)
	assert.Equal(t, "python", summary.Results.Languages[0].Language)
}

func TestQueryCommands_Pagination(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, pyTree)
	cache := filepath.Join(t.TempDir(), "cache.db")

	_, _, _, err := runCLI(t, "dir", dir, "--cache", cache)
	require.NoError(t, err)

	stdout, _, _, err := runCLI(t, "query", "top", "--cache", cache, "--limit", "2", "--offset", "1")
	require.NoError(t, err)
	out := decode[[]CLIWord](t, stdout)
	assert.Equal(t, []CLIWord{
		{Word: "pass", Count: 3},
		{Word: "bar", Count: 1},
	}, out.Results)
	require.NotNil(t, out.TotalCount)
	assert.Equal(t, 5, *out.TotalCount)
}

func TestQueryCommand_NoCache(t *testing.T) {
	t.Parallel()
	stdout, _, _, err := runCLI(t, "query", "summary", "--cache", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Contains(t, decode[any](t, stdout).Error, "cache not found")
}

func TestLanguagesCommand(t *testing.T) {
	t.Parallel()
	stdout, _, _, err := runCLI(t, "languages")
	require.NoError(t, err)

	out := decode[[]CLILanguage](t, stdout)
	var python *CLILanguage
	for i := range out.Results {
		if out.Results[i].Name == "python" {
			python = &out.Results[i]
		}
	}
	require.NotNil(t, python)
	assert.True(t, python.TreeSitter)
	assert.Positive(t, python.Keywords)
}

func TestStopwordsCommand(t *testing.T) {
	t.Parallel()
	stdout, _, _, err := runCLI(t, "stopwords")
	require.NoError(t, err)

	out := decode[[]CLIScript](t, stdout)
	assert.Contains(t, out.Results, CLIScript{Name: "builtin:rare", Path: "stopwords/rare.risor"})
	assert.Contains(t, out.Results, CLIScript{Name: "builtin:keywords", Path: "stopwords/keywords.risor"})
}

// --- Flag precedence ---

func TestApplyCountFlags(t *testing.T) {
	t.Parallel()
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "x"}
		addCountFlags(cmd)
		return cmd
	}

	t.Run("unset flags keep config values", func(t *testing.T) {
		cfg := config.Default()
		cfg.ExcludeWords = []string{"self"}
		cfg.Parallel = 4
		cfg.Docstrings = false
		cmd := newCmd()
		require.NoError(t, cmd.ParseFlags(nil))

		require.NoError(t, applyCountFlags(cmd, cfg))
		assert.Equal(t, []string{"self"}, cfg.ExcludeWords)
		assert.Equal(t, 4, cfg.Parallel)
		assert.False(t, cfg.Docstrings)
	})

	t.Run("set flags replace config values", func(t *testing.T) {
		cfg := config.Default()
		cfg.ExcludeWords = []string{"self"}
		cmd := newCmd()
		require.NoError(t, cmd.ParseFlags([]string{
			"--exclude-word", "this",
			"--comments", "split",
			"--docstrings=false",
			"--workers", "3",
		}))

		require.NoError(t, applyCountFlags(cmd, cfg))
		assert.Equal(t, []string{"this"}, cfg.ExcludeWords)
		assert.Equal(t, "split", cfg.Comments)
		assert.False(t, cfg.Docstrings)
		assert.Equal(t, 3, cfg.Parallel)
	})

	t.Run("serial wins over workers", func(t *testing.T) {
		cfg := config.Default()
		cmd := newCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--workers", "8", "--serial"}))

		require.NoError(t, applyCountFlags(cmd, cfg))
		assert.Equal(t, 1, cfg.Parallel)
	})

	t.Run("invalid backend", func(t *testing.T) {
		cfg := config.Default()
		cmd := newCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--backend", "regex"}))

		assert.Error(t, applyCountFlags(cmd, cfg))
	})
}

// --- Text formatting ---

func TestOutputResultText_Summary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{
		Command: "summary",
		Results: CLISummary{
			Files: 2, Words: 6, UniqueWords: 4,
			Languages: []CLILanguageSummary{{Language: "python", Files: 2, Words: 6, UniqueWords: 4}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Files: 2")
	assert.Contains(t, buf.String(), "Words: 6 (4 unique)")
	assert.Contains(t, buf.String(), "python: 2 files, 6 words, 4 unique")
}

func TestOutputResultText_Unsupported(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Results: 42})
	assert.Error(t, err)
}
