package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jward/wordle"
	"github.com/jward/wordle/internal/config"
	"github.com/jward/wordle/internal/logging"
	"github.com/spf13/cobra"
)

func (c *cli) fileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Count the words of a single source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCount(cmd, args[0], func(ctx context.Context, e *wordle.Engine, cfg *config.Config) (wordle.FrequencyMap, error) {
				return e.FrequencyFromFile(ctx, args[0], cfg.ExcludeWords)
			})
		},
	}
	addCountFlags(cmd)
	return cmd
}

func (c *cli) dirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir [path]",
		Short: "Count the words of every file under a directory",
		Long: `Walks the directory recursively and counts every regular file whose
name matches a known grammar. ".git" is always skipped; --exclude-dir
patterns are root-relative regular expressions matched against whole
path segments, so "test" skips "test/" but not "testing/".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return c.runCount(cmd, dir, func(ctx context.Context, e *wordle.Engine, cfg *config.Config) (wordle.FrequencyMap, error) {
				return e.FrequencyFromDirectory(ctx, dir, cfg.ExcludeWords, cfg.ExcludeDirs)
			})
		},
	}
	addCountFlags(cmd)
	return cmd
}

func (c *cli) gitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git <url>",
		Short: "Clone a repository and count the words of its tree",
		Long: `Clones the repository into a temporary directory, counts it like "dir",
and removes the checkout. Without --ref the default branch tip is cloned
at depth 1; with --ref the full history is cloned and reset to the ref.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, _ := cmd.Flags().GetString("ref")
			return c.runCount(cmd, args[0], func(ctx context.Context, e *wordle.Engine, cfg *config.Config) (wordle.FrequencyMap, error) {
				return e.FrequencyFromRepository(ctx, args[0], ref, cfg.ExcludeWords, cfg.ExcludeDirs)
			})
		},
	}
	cmd.Flags().String("ref", "", "commit, tag or branch to check out (default: remote HEAD)")
	cmd.Flags().Int("depth", 0, "clone depth (0: 1 without --ref, full with --ref)")
	addCountFlags(cmd)
	return cmd
}

// addCountFlags registers the flags shared by file, dir and git. Each one
// overrides the matching config setting only when given.
func addCountFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("exclude-word", nil, "word to drop from the result (repeatable)")
	f.StringSlice("exclude-dir", nil, "root-relative directory pattern to skip (repeatable)")
	f.StringSlice("languages", nil, "only count these languages (e.g. go,python)")
	f.Bool("keywords", false, "drop the reserved words of every language seen")
	f.String("comments", "", "comment policy: drop|split")
	f.Bool("docstrings", true, "count documentation strings (--docstrings=false drops them)")
	f.String("backend", "", "classifier backend: chroma|treesitter")
	f.String("encoding", "", "IANA encoding of every file (default utf-8)")
	f.String("cache", "", "SQLite word cache path")
	f.StringSlice("stopwords", nil, "stop-word script path or builtin:name (repeatable)")
	f.Bool("serial", false, "count files one at a time")
	f.Int("workers", 0, "worker pool size (0: one per CPU)")
}

// applyCountFlags layers explicitly set flags over cfg and validates the
// result.
func applyCountFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("exclude-word") {
		cfg.ExcludeWords, _ = f.GetStringSlice("exclude-word")
	}
	if f.Changed("exclude-dir") {
		cfg.ExcludeDirs, _ = f.GetStringSlice("exclude-dir")
	}
	if f.Changed("keywords") {
		cfg.Keywords, _ = f.GetBool("keywords")
	}
	if f.Changed("comments") {
		cfg.Comments, _ = f.GetString("comments")
	}
	if f.Changed("docstrings") {
		cfg.Docstrings, _ = f.GetBool("docstrings")
	}
	if f.Changed("backend") {
		cfg.Backend, _ = f.GetString("backend")
	}
	if f.Changed("encoding") {
		cfg.Encoding, _ = f.GetString("encoding")
	}
	if f.Changed("cache") {
		cfg.Cache, _ = f.GetString("cache")
	}
	if f.Changed("stopwords") {
		cfg.StopwordScripts, _ = f.GetStringSlice("stopwords")
	}
	if f.Changed("workers") {
		cfg.Parallel, _ = f.GetInt("workers")
	}
	if serial, _ := f.GetBool("serial"); serial {
		cfg.Parallel = 1
	}
	return cfg.Validate()
}

// engineOptions translates a validated config into Engine options.
func (c *cli) engineOptions(cmd *cobra.Command, cfg *config.Config) ([]wordle.Option, error) {
	policy, err := wordle.ParseCommentPolicy(cfg.Comments)
	if err != nil {
		return nil, err
	}
	opts := []wordle.Option{
		wordle.WithBackend(cfg.Backend),
		wordle.WithCommentPolicy(policy),
		wordle.WithDocstrings(cfg.Docstrings),
		wordle.WithEncoding(cfg.Encoding),
		wordle.WithKeywords(cfg.Keywords),
		wordle.WithWorkers(cfg.Parallel),
	}
	if langs, _ := cmd.Flags().GetStringSlice("languages"); len(langs) > 0 {
		opts = append(opts, wordle.WithLanguages(langs...))
	}
	if len(cfg.StopwordScripts) > 0 {
		opts = append(opts, wordle.WithStopWordScripts("", cfg.StopwordScripts...))
	}
	if cfg.Cache != "" {
		cachePath, err := resolveCachePath(cfg.Cache)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(cachePath), err)
		}
		opts = append(opts, wordle.WithCache(cachePath))
	}
	if cmd.Flags().Lookup("depth") != nil {
		depth, _ := cmd.Flags().GetInt("depth")
		opts = append(opts, wordle.WithCloneDepth(depth))
	}
	return opts, nil
}

// countStats is filled in by the progress callback, which the engine calls
// from a single goroutine.
type countStats struct {
	files   int
	counted int
	cached  int
}

type countFunc func(ctx context.Context, e *wordle.Engine, cfg *config.Config) (wordle.FrequencyMap, error)

// runCount builds an engine from config and flags, runs fn, and prints the
// top words.
func (c *cli) runCount(cmd *cobra.Command, target string, fn countFunc) error {
	command := cmd.Name()
	start := time.Now()

	cfg := *c.cfg
	if err := applyCountFlags(cmd, &cfg); err != nil {
		return c.outputError(command, err)
	}
	opts, err := c.engineOptions(cmd, &cfg)
	if err != nil {
		return c.outputError(command, err)
	}

	var stats countStats
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append(opts, wordle.WithProgress(func(ev wordle.FileEvent) {
		stats.files++
		if ev.Language == "" {
			c.logger.Log(ctx, logging.LevelTrace, "skipped", "path", ev.Path)
			return
		}
		stats.counted++
		if ev.Cached {
			stats.cached++
		}
		c.logger.Debug("counted", "path", ev.Path, "language", ev.Language, "words", ev.Words, "cached", ev.Cached)
	}))

	engine, err := wordle.New(opts...)
	if err != nil {
		return c.outputError(command, fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	words, err := fn(ctx, engine, &cfg)
	if err != nil {
		return c.outputError(command, err)
	}

	c.logger.Info("counted "+target,
		"files", stats.files,
		"classified", stats.counted,
		"cached", stats.cached,
		"unique_words", len(words),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	entries := words.Top(c.top)
	cliWords := make([]CLIWord, len(entries))
	for i, en := range entries {
		cliWords[i] = CLIWord{Word: en.Word, Count: en.Count}
	}
	total := len(words)
	return c.outputResult(CLIResult{
		Command:    command,
		Results:    cliWords,
		TotalCount: &total,
	})
}
