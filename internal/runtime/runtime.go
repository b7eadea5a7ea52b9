package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// BuiltinPrefix marks a script name that resolves inside the runtime's
// fs.FS (e.g. "builtin:rare" -> "stopwords/rare.risor").
const BuiltinPrefix = "builtin:"

// Runtime embeds a Risor VM and runs stop-word scripts over an
// aggregated frequency map.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the filesystem that builtin scripts are loaded
// from. Imports inside builtin scripts also resolve against it.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger routes the script-visible log object to l.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime that resolves relative script paths against
// scriptsDir (the working directory when empty).
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a Risor script with all standard globals
// plus any extra globals provided by the caller. It returns the value of
// the script's final expression.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) (object.Object, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, src, scriptPath, r.buildImporterFor(scriptPath, extraGlobals), extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, imp importer.Importer, extraGlobals map[string]any) (object.Object, error) {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return result, nil
}

// buildImporterFor returns a Risor importer rooted where scriptPath lives:
// the fs.FS for builtin scripts, the script's directory otherwise.
func (r *Runtime) buildImporterFor(scriptPath string, extraGlobals map[string]any) importer.Importer {
	globals := r.buildGlobals(extraGlobals)
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if IsBuiltin(scriptPath) {
		if r.fsys == nil {
			return nil
		}
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	return importer.NewLocalImporter(importer.LocalImporterOptions{
		GlobalNames: globalNames,
		SourceDir:   filepath.Dir(r.diskPath(scriptPath)),
		Extensions:  []string{".risor"},
	})
}

// IsBuiltin reports whether name refers to a builtin script.
func IsBuiltin(name string) bool {
	return strings.HasPrefix(name, BuiltinPrefix)
}

// BuiltinScriptPath maps "builtin:rare" to "stopwords/rare.risor".
func BuiltinScriptPath(name string) string {
	return path.Join("stopwords", strings.TrimPrefix(name, BuiltinPrefix)+".risor")
}

// LoadScript reads a script and returns its source code. Builtin names are
// read from the configured fs.FS; everything else from disk, relative to
// scriptsDir.
func (r *Runtime) LoadScript(name string) (string, error) {
	if IsBuiltin(name) {
		if r.fsys == nil {
			return "", fmt.Errorf("runtime: no builtin scripts configured for %s", name)
		}
		fsPath := BuiltinScriptPath(name)
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := r.diskPath(name)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

func (r *Runtime) diskPath(name string) string {
	if filepath.IsAbs(name) || r.scriptsDir == "" {
		return name
	}
	return filepath.Join(r.scriptsDir, name)
}

// Builtins lists the builtin script names available in the fs.FS, sorted.
func (r *Runtime) Builtins() []string {
	if r.fsys == nil {
		return nil
	}
	entries, err := fs.ReadDir(r.fsys, "stopwords")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".risor") {
			continue
		}
		names = append(names, BuiltinPrefix+strings.TrimSuffix(e.Name(), ".risor"))
	}
	sort.Strings(names)
	return names
}

// StopWords runs a stop-word script against an aggregated frequency map.
// The script sees the map as the global "words" and the languages that
// contributed to it as "languages". Its final expression must evaluate to
// a list of words or a map whose keys are words; nil means none.
func (r *Runtime) StopWords(ctx context.Context, scriptPath string, words map[string]int, languages []string) ([]string, error) {
	result, err := r.RunScript(ctx, scriptPath, map[string]any{
		"words":     wordsObject(words),
		"languages": stringList(languages),
	})
	if err != nil {
		return nil, err
	}
	out, err := wordsFromResult(result)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", scriptPath, err)
	}
	return out, nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"keywords": makeKeywordsFn(),
		"log":      mustProxy(&logObject{logger: r.logger}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
