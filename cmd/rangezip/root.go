package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var verbose bool

func buildRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rangezip",
		Version: version,
		Short:   "Inspect and extract ZIP archives hosted on a remote HTTP(S) server",
		Long: `rangezip reads a ZIP archive served over HTTP(S) without downloading it
in full. Listing entries costs a handful of small range requests;
extracting one entry costs only the bytes of that entry.

Commands:
  list      Print every entry in the archive
  stat      Print one entry's metadata by index or path
  extract   Extract one or more entries to disk
  shell     Open an interactive entry browser

Examples:
  rangezip list https://example.com/archive.zip
  rangezip stat https://example.com/archive.zip --path docs/readme.txt
  rangezip extract https://example.com/archive.zip 'docs/**/*.pdf' -o ./out
  rangezip shell https://example.com/archive.zip`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	return cmd
}
