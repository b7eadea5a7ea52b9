// Package config provides configuration loading for wordle.
// It supports a YAML file, a .env file and WORDLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jward/wordle/internal/filter"
	"github.com/jward/wordle/internal/lexer"
	"github.com/jward/wordle/internal/logging"
	"github.com/jward/wordle/internal/source"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = ".wordle.yaml"

// Config contains all wordle configuration settings.
type Config struct {
	// ExcludeWords are removed from every result.
	ExcludeWords []string `json:"exclude_words" yaml:"exclude_words"`

	// ExcludeDirs are root-relative path patterns skipped during directory
	// walks. ".git" is always skipped.
	ExcludeDirs []string `json:"exclude_dirs" yaml:"exclude_dirs"`

	// Keywords removes the reserved words of every language seen.
	Keywords bool `json:"keywords" yaml:"keywords"`

	// Comments is the comment policy: "drop" (default) or "split".
	Comments string `json:"comments" yaml:"comments"`

	// Docstrings counts documentation strings (default true). False drops
	// String.Doc tokens such as Python docstrings.
	Docstrings bool `json:"docstrings" yaml:"docstrings"`

	// Backend selects the lexical classifier: "chroma" (default) or "treesitter".
	Backend string `json:"backend" yaml:"backend"`

	// Encoding is the IANA name used to decode every file.
	Encoding string `json:"encoding" yaml:"encoding"`

	// Parallel is the worker count; 0 means GOMAXPROCS, 1 is serial.
	Parallel int `json:"parallel" yaml:"parallel"`

	// Cache is a SQLite database path for per-file word counts. Empty disables it.
	Cache string `json:"cache,omitempty" yaml:"cache,omitempty"`

	// StopwordScripts are Risor scripts (or builtin:name) run over the result.
	StopwordScripts []string `json:"stopword_scripts" yaml:"stopword_scripts"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures CLI logging.
type LoggingConfig struct {
	// Level is "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with defaults applied.
func Default() *Config {
	return &Config{
		Comments:   filter.DropComments.String(),
		Docstrings: true,
		Backend:    lexer.BackendChroma,
		Encoding:   source.DefaultEncoding,
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, then path (or DefaultFile when path
// is empty and the file exists), then the environment. A .env file in the
// working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	fileCfg, err := LoadFromFile(path)
	switch {
	case err == nil:
		cfg = fileCfg
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Cache = expandEnvVars(cfg.Cache)
	return cfg, nil
}

// Validate checks that enumerated settings hold known values.
func (c *Config) Validate() error {
	if _, err := filter.ParsePolicy(c.Comments); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Backend) {
	case "", lexer.BackendChroma, lexer.BackendTreeSitter:
	default:
		return fmt.Errorf("config: invalid backend: %s (valid: chroma, treesitter)", c.Backend)
	}
	if _, err := source.NewDecoder(c.Encoding); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("config: parallel must be non-negative, got %d", c.Parallel)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("config: invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies WORDLE_* environment variables. List values are
// comma-separated.
func applyEnvOverrides(c *Config) error {
	if v := os.Getenv("WORDLE_EXCLUDE_WORDS"); v != "" {
		c.ExcludeWords = splitList(v)
	}
	if v := os.Getenv("WORDLE_EXCLUDE_DIRS"); v != "" {
		c.ExcludeDirs = splitList(v)
	}
	if v := os.Getenv("WORDLE_KEYWORDS"); v != "" {
		c.Keywords = v == "true" || v == "1"
	}
	if v := os.Getenv("WORDLE_COMMENTS"); v != "" {
		c.Comments = v
	}
	if v := os.Getenv("WORDLE_DOCSTRINGS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: WORDLE_DOCSTRINGS: %w", err)
		}
		c.Docstrings = b
	}
	if v := os.Getenv("WORDLE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("WORDLE_ENCODING"); v != "" {
		c.Encoding = v
	}
	if v := os.Getenv("WORDLE_PARALLEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: WORDLE_PARALLEL: %w", err)
		}
		c.Parallel = n
	}
	if v := os.Getenv("WORDLE_CACHE"); v != "" {
		c.Cache = expandEnvVars(v)
	}
	if v := os.Getenv("WORDLE_STOPWORD_SCRIPTS"); v != "" {
		c.StopwordScripts = splitList(v)
	}
	if v := os.Getenv("WORDLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
