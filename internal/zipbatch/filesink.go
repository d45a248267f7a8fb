package zipbatch

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jpainter/rangezip/internal/zipdir"
	"github.com/jpainter/rangezip/internal/zipextract"
)

// errPathTraversal reports an archive entry path that would escape the
// extraction root (a zip-slip attempt: "../" components or an absolute
// path).
var errPathTraversal = errors.New("zipbatch: entry path escapes extraction root")

// sanitizeEntryPath validates entryPath and returns its forward-slash
// canonical form. It rejects absolute paths, Windows drive prefixes,
// and any ".." path component, matching the checks a safe unzip
// implementation applies before joining an archive-controlled name
// onto a filesystem path.
func sanitizeEntryPath(entryPath string) (string, error) {
	normalized := filepath.ToSlash(entryPath)
	if normalized == "" {
		return "", fmt.Errorf("zipbatch: empty entry path")
	}
	if strings.HasPrefix(normalized, "/") {
		return "", errPathTraversal
	}
	if len(normalized) >= 2 && normalized[1] == ':' {
		return "", errPathTraversal
	}

	trimmed := strings.TrimRight(normalized, "/")
	for _, part := range strings.Split(trimmed, "/") {
		switch part {
		case "..":
			return "", errPathTraversal
		case "", ".":
			return "", fmt.Errorf("zipbatch: invalid entry path %q", entryPath)
		}
	}

	cleaned := path.Clean(trimmed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
		return "", errPathTraversal
	}
	return cleaned, nil
}

// FileSink builds SinkFactory destinations rooted at a directory on
// disk, rejecting any archive entry whose path would escape that root.
type FileSink struct {
	Root string
}

// Create resolves entry's path under the sink's root, creates parent
// directories, and opens the destination file for writing. It
// implements SinkFactory.
func (f FileSink) Create(entry zipdir.ZipEntryInfo) (zipextract.Sink, func() error, error) {
	rel, err := sanitizeEntryPath(entry.Path)
	if err != nil {
		return nil, nil, err
	}
	target := filepath.Join(f.Root, filepath.FromSlash(rel))

	// Re-confirm containment after Join in case exotic inputs slipped
	// past the component-level check above.
	if !strings.HasPrefix(target, filepath.Clean(f.Root)+string(filepath.Separator)) {
		return nil, nil, errPathTraversal
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, nil, fmt.Errorf("zipbatch: creating parent directory for %q: %w", entry.Path, err)
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("zipbatch: opening %q: %w", target, err)
	}
	return out, out.Close, nil
}
