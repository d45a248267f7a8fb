package zipdir

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jpainter/rangezip/internal/rangehttp"
	"github.com/jpainter/rangezip/internal/ziplocate"
	"github.com/jpainter/rangezip/internal/zipstruct"
)

// InvalidArgument reports a caller error against an opened archive: an
// out-of-range index or an unknown path.
type InvalidArgument struct {
	msg string
}

func (e *InvalidArgument) Error() string { return "zipdir: " + e.msg }

// NewInvalidArgument builds an InvalidArgument error for collaborators
// outside this package, such as the batch extractor, that need to
// report a caller error against an Archive in the same terms as Stat
// and Find do.
func NewInvalidArgument(format string, args ...any) error {
	return &InvalidArgument{msg: fmt.Sprintf(format, args...)}
}

// Archive is the ArchiveContext of the remote ZIP reader: one opened
// archive's base URL, HTTP client, total length and resolved entry
// list. entries is populated once by Open and never mutated after.
type Archive struct {
	client    *rangehttp.Client
	totalSize int64
	entries   []ZipEntryInfo
	byPath    map[string]int
	closed    bool
}

// Open issues the HEAD and the minimal set of GETs required to resolve
// the central directory: one HEAD, the EOCD search window, optionally
// the ZIP64 locator and record, and one range read of the central
// directory itself.
func Open(ctx context.Context, url string, opts ...rangehttp.Option) (*Archive, error) {
	client := rangehttp.New(url, opts...)

	info, err := client.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("zipdir: opening %s: %w", url, err)
	}

	loc, err := ziplocate.Locate(ctx, client, info.TotalSize)
	if err != nil {
		return nil, fmt.Errorf("zipdir: locating central directory in %s: %w", url, err)
	}

	cdBody, err := client.Range(ctx, loc.CDOffset, loc.CDOffset+loc.CDSize, false)
	if err != nil {
		return nil, fmt.Errorf("zipdir: reading central directory: %w", err)
	}
	defer cdBody.Close()

	cdBuf := make([]byte, loc.CDSize)
	if _, err := readFull(cdBody, cdBuf); err != nil {
		return nil, fmt.Errorf("zipdir: reading central directory: %w", err)
	}

	entries, err := decodeCentralDirectory(cdBuf)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]int, len(entries))
	for i, e := range entries {
		byPath[e.Path] = i
	}

	slog.Debug("zipdir: opened archive", "url", url, "entries", len(entries), "cd_size", loc.CDSize)

	return &Archive{
		client:    client,
		totalSize: info.TotalSize,
		entries:   entries,
		byPath:    byPath,
	}, nil
}

// List returns every entry in central-directory order. The returned
// slice must not be mutated by the caller.
func (a *Archive) List() []ZipEntryInfo {
	return a.entries
}

// Stat returns the entry at index. Indices are stable for the lifetime
// of the Archive.
func (a *Archive) Stat(index int) (ZipEntryInfo, error) {
	if index < 0 || index >= len(a.entries) {
		return ZipEntryInfo{}, &InvalidArgument{msg: fmt.Sprintf("index %d out of range [0, %d)", index, len(a.entries))}
	}
	return a.entries[index], nil
}

// Find looks up an entry by its exact path and returns its index
// alongside the descriptor.
func (a *Archive) Find(path string) (int, ZipEntryInfo, error) {
	i, ok := a.byPath[path]
	if !ok {
		return 0, ZipEntryInfo{}, &InvalidArgument{msg: fmt.Sprintf("no entry with path %q", path)}
	}
	return i, a.entries[i], nil
}

// TotalSize returns the archive's total byte length, as reported by the
// opening HEAD request.
func (a *Archive) TotalSize() int64 { return a.totalSize }

// Client exposes the underlying byte source so collaborators such as
// the entry extractor can issue further range requests against the
// same archive.
func (a *Archive) Client() *rangehttp.Client { return a.client }

// Close marks the archive closed. Entry descriptors remain readable
// afterward. It does not close the HTTP client or its connections, and
// Client still returns a usable client; ExtractMatching and the shell
// check Closed and refuse to extract from a closed Archive.
func (a *Archive) Close() error {
	a.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (a *Archive) Closed() bool { return a.closed }

func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return n, zipstruct.NewError("short read: got %d bytes, want %d: %v", n, len(buf), err)
	}
	return n, nil
}
