package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jward/wordle/internal/config"
	"github.com/jward/wordle/internal/logging"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	format     string
	configPath string
	logLevel   string
	top        int

	cfg    *config.Config
	logger *slog.Logger

	stdout io.Writer
	stderr io.Writer

	// errorHandled is set by outputError so main() doesn't double-print.
	errorHandled bool
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, logger: logging.Discard()}
}

func main() {
	c := newCLI(os.Stdout, os.Stderr)
	if err := c.rootCmd().Execute(); err != nil {
		if !c.errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "wordle",
		Short:   "Word-frequency models of source code",
		Long:    "Wordle classifies source files lexically, drops structural noise, and counts the remaining words of a file, a directory tree, or a git repository.",
		Version: version,

		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(c.format); err != nil {
				return err
			}
			return c.loadConfig(cmd)
		},
		// No Run: prints help by default.
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVar(&c.format, "format", "json", "output format: json|text")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultFile+" if present)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: info|debug|trace (overrides config)")
	root.PersistentFlags().IntVar(&c.top, "top", 50, "number of words to print (0 for all)")

	root.AddCommand(
		c.fileCmd(),
		c.dirCmd(),
		c.gitCmd(),
		c.queryCmd(),
		c.languagesCmd(),
		c.stopwordsCmd(),
	)
	return root
}

// loadConfig reads the config file and environment, then applies the
// persistent --log-level flag and builds the logger.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = c.logLevel
	}
	if !logging.ValidLevel(cfg.Logging.Level) {
		return fmt.Errorf("invalid log level %q: must be info, debug or trace", cfg.Logging.Level)
	}
	c.cfg = cfg
	c.logger = logging.NewLogger(cfg.Logging.Level, c.stderr)
	return nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveCachePath makes a relative cache path relative to the repository
// containing the working directory, so every subdirectory shares one cache.
func resolveCachePath(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	return filepath.Join(findRepoRoot(cwd), path), nil
}
