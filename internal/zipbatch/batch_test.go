package zipbatch

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jpainter/rangezip/internal/zipdir"
)

func TestExpandIncludesSelfAndChildren(t *testing.T) {
	entries := []zipdir.ZipEntryInfo{
		{Path: "docs/"},
		{Path: "docs/a.txt"},
		{Path: "docs/sub/b.txt"},
		{Path: "other.txt"},
	}
	got := Expand(entries, "docs/")
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestMatchGlob(t *testing.T) {
	entries := []zipdir.ZipEntryInfo{
		{Path: "docs/a.pdf"},
		{Path: "docs/b.txt"},
		{Path: "docs/sub/c.pdf"},
	}
	got, err := Match(entries, "docs/**/*.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestSanitizeEntryPathRejectsTraversal(t *testing.T) {
	cases := []string{"../escape.txt", "/abs/path.txt", "a/../../b.txt", "C:\\win.txt"}
	for _, c := range cases {
		if _, err := sanitizeEntryPath(c); err == nil {
			t.Errorf("expected rejection for %q", c)
		}
	}
}

func TestSanitizeEntryPathAcceptsNormal(t *testing.T) {
	got, err := sanitizeEntryPath("docs/sub/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "docs/sub/file.txt" {
		t.Errorf("got %q", got)
	}
}

func buildArchiveForExtract(t *testing.T, names []string, contents [][]byte) []byte {
	t.Helper()
	var lfhs [][]byte
	var cdfhs [][]byte
	offset := uint32(0)
	for i, name := range names {
		lfh := make([]byte, 30+len(name))
		binary.LittleEndian.PutUint32(lfh[0:], 0x04034b50)
		binary.LittleEndian.PutUint32(lfh[18:], uint32(len(contents[i])))
		binary.LittleEndian.PutUint32(lfh[22:], uint32(len(contents[i])))
		binary.LittleEndian.PutUint16(lfh[26:], uint16(len(name)))
		copy(lfh[30:], name)
		lfhs = append(lfhs, append(lfh, contents[i]...))

		cdfh := make([]byte, 46+len(name))
		binary.LittleEndian.PutUint32(cdfh[0:], 0x02014b50)
		binary.LittleEndian.PutUint32(cdfh[20:], uint32(len(contents[i])))
		binary.LittleEndian.PutUint32(cdfh[24:], uint32(len(contents[i])))
		binary.LittleEndian.PutUint16(cdfh[28:], uint16(len(name)))
		binary.LittleEndian.PutUint32(cdfh[42:], offset)
		copy(cdfh[46:], name)
		cdfhs = append(cdfhs, cdfh)

		offset += uint32(len(lfhs[i]))
	}

	var archive []byte
	for _, l := range lfhs {
		archive = append(archive, l...)
	}
	cdStart := uint32(len(archive))
	for _, c := range cdfhs {
		archive = append(archive, c...)
	}
	cdSize := uint32(len(archive)) - cdStart

	eocd := make([]byte, 22)
	binary.LittleEndian.PutUint32(eocd[0:], 0x06054b50)
	binary.LittleEndian.PutUint16(eocd[8:], uint16(len(names)))
	binary.LittleEndian.PutUint16(eocd[10:], uint16(len(names)))
	binary.LittleEndian.PutUint32(eocd[12:], cdSize)
	binary.LittleEndian.PutUint32(eocd[16:], cdStart)
	archive = append(archive, eocd...)
	return archive
}

func serveArchiveURL(t *testing.T, data []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			return
		}
		var start, end int
		if _, err := fmt.Sscanf(r.Header.Get("Range"), "bytes=%d-%d", &start, &end); err != nil {
			http.Error(w, "bad range", http.StatusBadRequest)
			return
		}
		if end >= len(data) {
			end = len(data) - 1
		}
		body := data[start : end+1]
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestExtractMatchingWritesFiles(t *testing.T) {
	names := []string{"a.txt", "b.txt"}
	contents := [][]byte{[]byte("AAAA"), []byte("BBBBBB")}
	archive := buildArchiveForExtract(t, names, contents)
	url := serveArchiveURL(t, archive)

	arc, err := zipdir.Open(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer arc.Close()
	entries := arc.List()

	dir := t.TempDir()
	sink := FileSink{Root: dir}

	if err := ExtractMatching(context.Background(), arc, entries, []int{0, 1}, 2, sink.Create); err != nil {
		t.Fatal(err)
	}

	for i, name := range names {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(contents[i]) {
			t.Errorf("file %q: got %q, want %q", name, got, contents[i])
		}
	}
}

func TestExtractMatchingRejectsClosedArchive(t *testing.T) {
	names := []string{"a.txt"}
	contents := [][]byte{[]byte("AAAA")}
	archive := buildArchiveForExtract(t, names, contents)
	url := serveArchiveURL(t, archive)

	arc, err := zipdir.Open(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	entries := arc.List()
	arc.Close()

	dir := t.TempDir()
	sink := FileSink{Root: dir}
	if err := ExtractMatching(context.Background(), arc, entries, []int{0}, 1, sink.Create); err == nil {
		t.Fatal("expected error extracting through a closed archive")
	}
}
