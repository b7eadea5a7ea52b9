package main

import (
	"slices"

	"github.com/jward/wordle/internal/lexer"
	"github.com/jward/wordle/internal/runtime"
	"github.com/jward/wordle/scripts"
	"github.com/spf13/cobra"
)

func (c *cli) languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List languages with keyword lists or tree-sitter grammars",
		Long: `Every file name chroma recognizes is counted with the default backend.
This lists the languages that have extra support: a keyword list for
--keywords, or a grammar for --backend treesitter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kw := lexer.KeywordLanguages()
			ts := lexer.TreeSitterLanguages()

			names := slices.Clone(kw)
			for _, l := range ts {
				if !slices.Contains(names, l) {
					names = append(names, l)
				}
			}
			slices.Sort(names)

			langs := make([]CLILanguage, len(names))
			for i, name := range names {
				langs[i] = CLILanguage{
					Name:       name,
					Keywords:   len(lexer.Keywords(name)),
					TreeSitter: slices.Contains(ts, name),
				}
			}
			return c.outputResult(CLIResult{
				Command: "languages",
				Results: langs,
			})
		},
	}
}

func (c *cli) stopwordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stopwords",
		Short: "List the builtin stop-word scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS), runtime.WithLogger(c.logger))
			names := rt.Builtins()
			out := make([]CLIScript, len(names))
			for i, name := range names {
				out[i] = CLIScript{Name: name, Path: runtime.BuiltinScriptPath(name)}
			}
			return c.outputResult(CLIResult{
				Command: "stopwords",
				Results: out,
			})
		},
	}
}
