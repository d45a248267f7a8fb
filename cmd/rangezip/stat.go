package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jpainter/rangezip/internal/zipdir"
)

var statPath string

func buildStatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <url> [index]",
		Short: "Print one entry's metadata by index or path",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runStat,
	}
	cmd.Flags().StringVar(&statPath, "path", "", "Look up the entry by exact path instead of index")
	return cmd
}

func runStat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	arc, err := zipdir.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer arc.Close()

	var entry zipdir.ZipEntryInfo
	var index int
	switch {
	case statPath != "":
		index, entry, err = arc.Find(statPath)
	case len(args) == 2:
		index, err = strconv.Atoi(args[1])
		if err == nil {
			entry, err = arc.Stat(index)
		}
	default:
		return fmt.Errorf("rangezip: stat requires an index argument or --path")
	}
	if err != nil {
		return err
	}

	fmt.Printf("index:           %d\n", index)
	fmt.Printf("path:            %s\n", entry.Path)
	fmt.Printf("is_dir:          %t\n", entry.IsDir())
	fmt.Printf("file_size:       %d\n", entry.FileSize)
	fmt.Printf("compressed_size: %d\n", entry.CompressedSize)
	fmt.Printf("compression:     %s\n", entry.Compression)
	fmt.Printf("checksum:        %08x\n", entry.Checksum)
	fmt.Printf("modified:        %s\n", entry.ModTime().Format("2006-01-02 15:04:05"))
	fmt.Printf("encrypted:       %t\n", entry.Encrypted)
	fmt.Printf("raw_offset:      %d\n", entry.RawOffset)
	return nil
}
