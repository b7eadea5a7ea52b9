package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jward/wordle"
	"github.com/jward/wordle/internal/config"
	"github.com/jward/wordle/internal/store"
	"github.com/spf13/cobra"
)

func (c *cli) queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the word cache",
		Long:  "Run queries against a word cache written by file, dir or git with --cache.",
	}
	cmd.PersistentFlags().String("cache", "", "SQLite word cache path (default: cache from config)")
	cmd.PersistentFlags().Int("limit", 50, "pagination limit (max 500)")
	cmd.PersistentFlags().Int("offset", 0, "pagination offset")

	cmd.AddCommand(c.queryTopCmd(), c.queryFilesCmd(), c.querySummaryCmd())
	return cmd
}

func (c *cli) queryTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most frequent cached words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd)
			if err != nil {
				return c.outputError("top", err)
			}
			defer s.Close()

			langs, _ := cmd.Flags().GetStringSlice("language")
			prefix, _ := cmd.Flags().GetString("prefix")
			result, err := wordle.NewQueryBuilder(s).TopWords(
				wordle.WordFilter{Languages: langs, PathPrefix: prefix},
				buildPagination(cmd),
			)
			if err != nil {
				return c.outputError("top", err)
			}

			cliWords := make([]CLIWord, len(result.Items))
			for i, wc := range result.Items {
				cliWords[i] = CLIWord{Word: wc.Word, Count: wc.Count}
			}
			return c.outputResult(CLIResult{
				Command:    "top",
				Results:    cliWords,
				TotalCount: &result.TotalCount,
			})
		},
	}
	cmd.Flags().StringSlice("language", nil, "filter by language (repeatable)")
	cmd.Flags().String("prefix", "", "filter by path prefix")
	return cmd
}

func (c *cli) queryFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <word>",
		Short: "List the cached files containing a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd)
			if err != nil {
				return c.outputError("files", err)
			}
			defer s.Close()

			result, err := wordle.NewQueryBuilder(s).FilesWithWord(args[0], buildPagination(cmd))
			if err != nil {
				return c.outputError("files", err)
			}

			cliFiles := make([]CLIFileCount, len(result.Items))
			for i, fc := range result.Items {
				cliFiles[i] = CLIFileCount{Path: fc.Path, Language: fc.Language, Count: fc.Count}
			}
			return c.outputResult(CLIResult{
				Command:    "files",
				Results:    cliFiles,
				TotalCount: &result.TotalCount,
			})
		},
	}
}

func (c *cli) querySummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show per-language cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd)
			if err != nil {
				return c.outputError("summary", err)
			}
			defer s.Close()

			summary, err := wordle.NewQueryBuilder(s).Summary()
			if err != nil {
				return c.outputError("summary", err)
			}

			cliSummary := CLISummary{
				Files:       summary.Files,
				Words:       summary.Words,
				UniqueWords: summary.UniqueWords,
				Languages:   make([]CLILanguageSummary, len(summary.Languages)),
			}
			for i, ls := range summary.Languages {
				cliSummary.Languages[i] = CLILanguageSummary{
					Language:    ls.Language,
					Files:       ls.Files,
					Words:       ls.Words,
					UniqueWords: ls.UniqueWords,
				}
			}
			return c.outputResult(CLIResult{
				Command: "summary",
				Results: cliSummary,
			})
		},
	}
}

// --- Helpers ---

// openStore opens the cache named by --cache or the config. It never
// creates a database.
func (c *cli) openStore(cmd *cobra.Command) (*store.Store, error) {
	path := c.cfg.Cache
	if cmd.Flags().Changed("cache") {
		path, _ = cmd.Flags().GetString("cache")
	}
	if path == "" {
		return nil, fmt.Errorf("no cache configured (pass --cache or set cache in %s)", config.DefaultFile)
	}
	dbPath, err := resolveCachePath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("cache not found: %s (run 'wordle dir --cache %s' first)", dbPath, path)
	}
	return store.NewStore(dbPath)
}

// buildPagination creates a Pagination from CLI flags.
func buildPagination(cmd *cobra.Command) wordle.Pagination {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	return wordle.Pagination{Limit: limit, Offset: offset}
}

// outputResult marshals a CLIResult to stdout in the selected format.
func (c *cli) outputResult(result CLIResult) error {
	if c.format == "text" {
		return outputResultText(c.stdout, result)
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func (c *cli) outputError(command string, err error) error {
	c.errorHandled = true
	if c.format == "text" {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}
