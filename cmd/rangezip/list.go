package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jpainter/rangezip/internal/zipdir"
)

func buildListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <url>",
		Short: "Print every entry in the archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	arc, err := zipdir.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer arc.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tCOMPRESSION\tSIZE\tCOMPRESSED\tMODIFIED\tPATH")
	for i, e := range arc.List() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n",
			i, e.Compression, e.FileSize, e.CompressedSize,
			e.ModTime().Format("2006-01-02 15:04:05"), e.Path)
	}
	return tw.Flush()
}
