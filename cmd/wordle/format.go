package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// formatWordsText formats CLIWord results as aligned columns.
func formatWordsText(w io.Writer, words []CLIWord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tCOUNT")
	for _, wc := range words {
		fmt.Fprintf(tw, "%s\t%d\n", wc.Word, wc.Count)
	}
	tw.Flush()
}

// formatFileCountsText formats CLIFileCount results as aligned columns.
func formatFileCountsText(w io.Writer, files []CLIFileCount) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tLANGUAGE\tPATH")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Count, f.Language, f.Path)
	}
	tw.Flush()
}

// formatSummaryText formats CLISummary as readable text.
func formatSummaryText(w io.Writer, summary CLISummary) {
	fmt.Fprintln(w, "Cache Summary")
	fmt.Fprintln(w, "=============")
	fmt.Fprintf(w, "Files: %d\n", summary.Files)
	fmt.Fprintf(w, "Words: %d (%d unique)\n", summary.Words, summary.UniqueWords)

	if len(summary.Languages) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Languages:")
		for _, lang := range summary.Languages {
			fmt.Fprintf(w, "  %s: %d files, %d words, %d unique\n",
				lang.Language, lang.Files, lang.Words, lang.UniqueWords)
		}
	}
}

// formatLanguagesText formats CLILanguage results as aligned columns.
func formatLanguagesText(w io.Writer, langs []CLILanguage) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tKEYWORDS\tTREE-SITTER")
	for _, l := range langs {
		ts := "-"
		if l.TreeSitter {
			ts = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", l.Name, l.Keywords, ts)
	}
	tw.Flush()
}

// formatScriptsText formats CLIScript results as aligned columns.
func formatScriptsText(w io.Writer, scripts []CLIScript) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH")
	for _, s := range scripts {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Path)
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIWord:
		formatWordsText(w, v)
	case []CLIFileCount:
		formatFileCountsText(w, v)
	case CLISummary:
		formatSummaryText(w, v)
	case []CLILanguage:
		formatLanguagesText(w, v)
	case []CLIScript:
		formatScriptsText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	// Pagination footer.
	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}

	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLIWord:
		return len(r)
	case []CLIFileCount:
		return len(r)
	case []CLILanguage:
		return len(r)
	case []CLIScript:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
