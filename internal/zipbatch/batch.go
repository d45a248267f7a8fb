// Package zipbatch is the thin external-collaborator layer around the
// core remote ZIP reader: expanding a directory entry's children,
// selecting entries by glob, extracting many entries concurrently, and
// writing extracted bytes to a sanitized path on disk.
package zipbatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/jpainter/rangezip/internal/zipdir"
	"github.com/jpainter/rangezip/internal/zipextract"
)

// Expand returns the indices of every entry in entries whose path is
// dirPath itself or lies under it (dirPath followed by "/"). Callers
// that select a directory entry for extraction are expected to expand
// it into its descendants before extracting, since extracting a
// directory placeholder by itself produces nothing.
func Expand(entries []zipdir.ZipEntryInfo, dirPath string) []int {
	prefix := strings.TrimSuffix(dirPath, "/") + "/"
	var out []int
	for i, e := range entries {
		if e.Path == dirPath || strings.HasPrefix(e.Path, prefix) {
			out = append(out, i)
		}
	}
	return out
}

// Match returns the indices of every entry whose path matches the
// doublestar glob pattern.
func Match(entries []zipdir.ZipEntryInfo, pattern string) ([]int, error) {
	var out []int
	for i, e := range entries {
		ok, err := doublestar.Match(pattern, e.Path)
		if err != nil {
			return nil, fmt.Errorf("zipbatch: bad pattern %q: %w", pattern, err)
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// SinkFactory builds the destination sink for one entry's extraction.
// The factory is responsible for creating any parent directories and
// closing the sink once ExtractMatching has finished writing to it.
type SinkFactory func(entry zipdir.ZipEntryInfo) (zipextract.Sink, func() error, error)

// ExtractMatching extracts every entry at the given indices concurrently,
// bounded by concurrency simultaneous extractions, using arc's client for
// all range requests. It returns the first error encountered, if any,
// after every launched extraction has completed. It fails immediately
// with an InvalidArgument if arc has already been closed.
func ExtractMatching(ctx context.Context, arc *zipdir.Archive, entries []zipdir.ZipEntryInfo, indices []int, concurrency int, newSink SinkFactory, opts ...zipextract.Option) error {
	if arc.Closed() {
		return zipdir.NewInvalidArgument("extraction requested after close")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, idx := range indices {
		entry := entries[idx]
		if entry.IsDir() {
			continue
		}
		g.Go(func() error {
			sink, closeSink, err := newSink(entry)
			if err != nil {
				return fmt.Errorf("zipbatch: preparing sink for %q: %w", entry.Path, err)
			}
			extractErr := zipextract.Extract(ctx, arc.Client(), entry, sink, nil, opts...)
			closeErr := closeSink()
			if extractErr != nil {
				return fmt.Errorf("zipbatch: extracting %q: %w", entry.Path, extractErr)
			}
			if closeErr != nil {
				return fmt.Errorf("zipbatch: closing sink for %q: %w", entry.Path, closeErr)
			}
			return nil
		})
	}

	return g.Wait()
}
