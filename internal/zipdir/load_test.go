package zipdir

import (
	"encoding/binary"
	"testing"
)

func buildCDFH(name string, method uint16, compressed, uncompressed uint32, offset uint32, bitflag uint16) []byte {
	buf := make([]byte, 46+len(name))
	binary.LittleEndian.PutUint32(buf[0:], 0x02014b50)
	binary.LittleEndian.PutUint16(buf[8:], bitflag)
	binary.LittleEndian.PutUint16(buf[10:], method)
	binary.LittleEndian.PutUint16(buf[12:], 0) // mtime
	binary.LittleEndian.PutUint16(buf[14:], (0<<9)|(1<<5)|1) // 1980-01-01, mdate
	binary.LittleEndian.PutUint32(buf[20:], compressed)
	binary.LittleEndian.PutUint32(buf[24:], uncompressed)
	binary.LittleEndian.PutUint16(buf[28:], uint16(len(name)))
	binary.LittleEndian.PutUint32(buf[42:], offset)
	copy(buf[46:], name)
	return buf
}

func TestDecodeCentralDirectorySingleEntry(t *testing.T) {
	buf := buildCDFH("hello.txt", 0, 14, 14, 0, 0)
	entries, err := decodeCentralDirectory(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Path != "hello.txt" || e.FileSize != 14 || e.CompressedSize != 14 || e.Compression != CompressionNone {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.IsDir() {
		t.Error("did not expect a directory")
	}
	want := e.ModifiedDate.ModTime()
	if want.Year() != 1980 || want.Month() != 1 || want.Day() != 1 {
		t.Errorf("unexpected mtime: %v", want)
	}
}

func TestDecodeCentralDirectoryMultipleEntries(t *testing.T) {
	a := buildCDFH("a.txt", 0, 1, 1, 0, 0)
	b := buildCDFH("dir/b.bin", 8, 5, 10, 100, 0)
	buf := append(append([]byte{}, a...), b...)

	entries, err := decodeCentralDirectory(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Path != "a.txt" || entries[1].Path != "dir/b.bin" {
		t.Errorf("unexpected order: %+v", entries)
	}
	if entries[1].Compression != CompressionDeflate {
		t.Errorf("expected deflate, got %v", entries[1].Compression)
	}
}

func TestDecodeCentralDirectoryToleratesUnknownCodec(t *testing.T) {
	buf := buildCDFH("x.bin", 99, 1, 1, 0, 0)
	entries, err := decodeCentralDirectory(buf)
	if err != nil {
		t.Fatalf("expected directory load to succeed despite unknown codec, got %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Compression != CompressionUnsupported {
		t.Errorf("expected CompressionUnsupported, got %v", entries[0].Compression)
	}
	if entries[0].RawCompressionMethod != 99 {
		t.Errorf("expected raw method 99, got %d", entries[0].RawCompressionMethod)
	}
}

func TestDecodeCentralDirectoryEncryptedFlag(t *testing.T) {
	buf := buildCDFH("secret.bin", 0, 1, 1, 0, 1)
	entries, err := decodeCentralDirectory(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !entries[0].Encrypted {
		t.Error("expected Encrypted to be true")
	}
}

func TestDecodeCentralDirectoryDirEntry(t *testing.T) {
	buf := buildCDFH("dir/", 0, 0, 0, 0, 0)
	entries, err := decodeCentralDirectory(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !entries[0].IsDir() {
		t.Error("expected IsDir to be true")
	}
}

func TestDecodeCentralDirectoryUTF8Flag(t *testing.T) {
	buf := buildCDFH("café.txt", 0, 0, 0, 0, 1<<11)
	entries, err := decodeCentralDirectory(buf)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Path != "café.txt" {
		t.Errorf("got %q", entries[0].Path)
	}
}

func TestDecodeCentralDirectoryTruncatedRecordErrors(t *testing.T) {
	buf := buildCDFH("hello.txt", 0, 14, 14, 0, 0)
	if _, err := decodeCentralDirectory(buf[:len(buf)-3]); err == nil {
		t.Fatal("expected error for truncated trailer")
	}
}
