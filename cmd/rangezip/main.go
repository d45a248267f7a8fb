// Command rangezip inspects and extracts entries from a ZIP archive
// hosted on a remote HTTP(S) server, reading only the byte ranges it
// needs.
package main

import (
	"log/slog"
	"os"
)

func main() {
	rootCmd := buildRootCommand()
	rootCmd.AddCommand(buildListCommand())
	rootCmd.AddCommand(buildStatCommand())
	rootCmd.AddCommand(buildExtractCommand())
	rootCmd.AddCommand(buildShellCommand())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("rangezip failed", "error", err)
		os.Exit(1)
	}
}
