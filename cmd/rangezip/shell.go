package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jpainter/rangezip/internal/rangeshell"
	"github.com/jpainter/rangezip/internal/zipdir"
)

var shellOutDir string

func buildShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell <url>",
		Short: "Open an interactive entry browser",
		Args:  cobra.ExactArgs(1),
		RunE:  runShell,
	}
	cmd.Flags().StringVarP(&shellOutDir, "output", "o", ".", "Destination directory for extracted entries")
	return cmd
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	arc, err := zipdir.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer arc.Close()

	p := tea.NewProgram(rangeshell.New(arc, shellOutDir))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("rangezip: shell: %w", err)
	}
	return nil
}
