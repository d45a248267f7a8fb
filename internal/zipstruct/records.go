// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zipstruct decodes the fixed-layout little-endian records of the
// ZIP file format: the local file header, the central directory file
// header, the end-of-central-directory record, and its ZIP64 counterparts.
//
// See https://www.pkware.com/appnote §§4.3.6-4.3.14, 4.5 for the on-wire
// layouts. All multibyte integers are little-endian.
package zipstruct

import (
	"encoding/binary"
	"fmt"
)

// ZipError reports an archive-level failure: a bad signature, a truncated
// or malformed record, a multi-disk archive, or an unsupported codec.
type ZipError struct {
	msg string
}

func (e *ZipError) Error() string { return "zip: " + e.msg }

func zipErrorf(format string, args ...any) error {
	return &ZipError{msg: fmt.Sprintf(format, args...)}
}

// NewError builds a *ZipError for callers outside this package (the
// archive locator, directory loader and entry extractor all surface
// archive-level failures through the same error type).
func NewError(format string, args ...any) error {
	return zipErrorf(format, args...)
}

// Fixed sizes of the records this package understands. Variable trailers
// (filename, extra field, comment) are the caller's responsibility.
const (
	LFHSize           = 30
	CDFHSize          = 46
	EOCDSize          = 22
	EOCD64LocatorSize = 20
	EOCD64Size        = 56
)

const (
	sigLFH          = 0x04034b50
	sigCDFH         = 0x02014b50
	sigEOCD         = 0x06054b50
	sigEOCD64Locator = 0x07064b50
	sigEOCD64       = 0x06064b50
)

// Sentinel32 marks a CDFH/EOCD field whose real value lives in the ZIP64 extra.
const Sentinel32 = 0xFFFFFFFF

// sentinel16 marks a disk/entry-count field whose real value lives in EOCD64.
const sentinel16 = 0xFFFF

// LocalFileHeader is the 30-byte fixed part of a Local File Header (LFH),
// immediately followed by the filename and extra field whose lengths it
// declares.
type LocalFileHeader struct {
	ReaderVersion    uint16
	BitFlag          uint16
	Compression      uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	PathSize         uint16
	ExtraSize        uint16
}

// DecodeLocalFileHeader parses the fixed 30-byte prefix of a local file
// header from buf. buf must be at least LFHSize bytes.
func DecodeLocalFileHeader(buf []byte) (LocalFileHeader, error) {
	var h LocalFileHeader
	if len(buf) < LFHSize {
		return h, zipErrorf("local file header: need %d bytes, got %d", LFHSize, len(buf))
	}
	if binary.LittleEndian.Uint32(buf[0:]) != sigLFH {
		return h, zipErrorf("bad signature: local file header")
	}
	h.ReaderVersion = binary.LittleEndian.Uint16(buf[4:])
	h.BitFlag = binary.LittleEndian.Uint16(buf[6:])
	h.Compression = binary.LittleEndian.Uint16(buf[8:])
	h.ModTime = binary.LittleEndian.Uint16(buf[10:])
	h.ModDate = binary.LittleEndian.Uint16(buf[12:])
	h.CRC32 = binary.LittleEndian.Uint32(buf[14:])
	h.CompressedSize = binary.LittleEndian.Uint32(buf[18:])
	h.UncompressedSize = binary.LittleEndian.Uint32(buf[22:])
	h.PathSize = binary.LittleEndian.Uint16(buf[26:])
	h.ExtraSize = binary.LittleEndian.Uint16(buf[28:])
	return h, nil
}

// CentralDirectoryFileHeader is the 46-byte fixed part of a Central
// Directory File Header (CDFH), immediately followed by the filename,
// extra field and comment whose lengths it declares.
type CentralDirectoryFileHeader struct {
	CreatorVersion   uint16
	ReaderVersion    uint16
	BitFlag          uint16
	Compression      uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	PathSize         uint16
	ExtraSize        uint16
	CommentSize      uint16
	DiskStart        uint16
	InternalAttrs    uint16
	ExternalAttrs    uint32
	Offset           uint32
}

// DecodeCentralDirectoryFileHeader parses the fixed 46-byte prefix of a
// central directory file header from buf. buf must be at least CDFHSize
// bytes.
func DecodeCentralDirectoryFileHeader(buf []byte) (CentralDirectoryFileHeader, error) {
	var h CentralDirectoryFileHeader
	if len(buf) < CDFHSize {
		return h, zipErrorf("central directory file header: need %d bytes, got %d", CDFHSize, len(buf))
	}
	if binary.LittleEndian.Uint32(buf[0:]) != sigCDFH {
		return h, zipErrorf("bad signature: central directory file header")
	}
	h.CreatorVersion = binary.LittleEndian.Uint16(buf[4:])
	h.ReaderVersion = binary.LittleEndian.Uint16(buf[6:])
	h.BitFlag = binary.LittleEndian.Uint16(buf[8:])
	h.Compression = binary.LittleEndian.Uint16(buf[10:])
	h.ModTime = binary.LittleEndian.Uint16(buf[12:])
	h.ModDate = binary.LittleEndian.Uint16(buf[14:])
	h.CRC32 = binary.LittleEndian.Uint32(buf[16:])
	h.CompressedSize = binary.LittleEndian.Uint32(buf[20:])
	h.UncompressedSize = binary.LittleEndian.Uint32(buf[24:])
	h.PathSize = binary.LittleEndian.Uint16(buf[28:])
	h.ExtraSize = binary.LittleEndian.Uint16(buf[30:])
	h.CommentSize = binary.LittleEndian.Uint16(buf[32:])
	h.DiskStart = binary.LittleEndian.Uint16(buf[34:])
	h.InternalAttrs = binary.LittleEndian.Uint16(buf[36:])
	h.ExternalAttrs = binary.LittleEndian.Uint32(buf[38:])
	h.Offset = binary.LittleEndian.Uint32(buf[42:])
	return h, nil
}

// UsesZip64Size reports whether the compressed or uncompressed size field
// is a ZIP64 sentinel.
func (h CentralDirectoryFileHeader) UsesZip64Size() bool {
	return h.CompressedSize == Sentinel32 || h.UncompressedSize == Sentinel32
}

// UsesZip64Offset reports whether the local-header offset field is a
// ZIP64 sentinel.
func (h CentralDirectoryFileHeader) UsesZip64Offset() bool {
	return h.Offset == Sentinel32
}

// EOCD is the classic End Of Central Directory record, minus its trailing
// comment.
type EOCD struct {
	Disk         uint16
	BeginDisk    uint16
	EntsOnDisk   uint16
	EntsTotal    uint16
	CDSize       uint32
	CDOffset     uint32
	CommentSize  uint16
}

// DecodeEOCD parses the fixed 22-byte EOCD record from buf. buf must be at
// least EOCDSize bytes; any trailing comment is ignored here.
func DecodeEOCD(buf []byte) (EOCD, error) {
	var e EOCD
	if len(buf) < EOCDSize {
		return e, zipErrorf("end of central directory: need %d bytes, got %d", EOCDSize, len(buf))
	}
	if binary.LittleEndian.Uint32(buf[0:]) != sigEOCD {
		return e, zipErrorf("bad signature: end of central directory")
	}
	e.Disk = binary.LittleEndian.Uint16(buf[4:])
	e.BeginDisk = binary.LittleEndian.Uint16(buf[6:])
	e.EntsOnDisk = binary.LittleEndian.Uint16(buf[8:])
	e.EntsTotal = binary.LittleEndian.Uint16(buf[10:])
	e.CDSize = binary.LittleEndian.Uint32(buf[12:])
	e.CDOffset = binary.LittleEndian.Uint32(buf[16:])
	e.CommentSize = binary.LittleEndian.Uint16(buf[20:])
	return e, nil
}

// NeedsZip64 reports whether any of the EOCD's fields hold a ZIP64
// sentinel and the EOCD64 locator/record must be consulted instead.
func (e EOCD) NeedsZip64() bool {
	return e.Disk == sentinel16 || e.EntsTotal == sentinel16 ||
		e.CDSize == Sentinel32 || e.CDOffset == Sentinel32
}

// EOCD64Locator points at the EOCD64 record, which may be far from the
// classic EOCD in a multi-gigabyte archive.
type EOCD64Locator struct {
	Disk         uint32
	EOCD64Offset uint64
	NumDisks     uint32
}

// DecodeEOCD64Locator parses the fixed 20-byte ZIP64 end-of-central
// directory locator from buf.
func DecodeEOCD64Locator(buf []byte) (EOCD64Locator, error) {
	var l EOCD64Locator
	if len(buf) < EOCD64LocatorSize {
		return l, zipErrorf("zip64 eocd locator: need %d bytes, got %d", EOCD64LocatorSize, len(buf))
	}
	if binary.LittleEndian.Uint32(buf[0:]) != sigEOCD64Locator {
		return l, zipErrorf("bad signature: zip64 eocd locator")
	}
	l.Disk = binary.LittleEndian.Uint32(buf[4:])
	l.EOCD64Offset = binary.LittleEndian.Uint64(buf[8:])
	l.NumDisks = binary.LittleEndian.Uint32(buf[16:])
	return l, nil
}

// EOCD64 is the 64-bit-capable end-of-central-directory record used when
// any classic EOCD field overflows its 16- or 32-bit width.
type EOCD64 struct {
	Disk       uint32
	BeginDisk  uint32
	EntsOnDisk uint64
	EntsTotal  uint64
	CDSize     uint64
	CDOffset   uint64
}

// DecodeEOCD64 parses the fixed 56-byte ZIP64 end-of-central-directory
// record from buf: a 12-byte signature-and-size prefix, two 2-byte
// version fields, then disk number, begin disk, entry counts and
// central directory size/offset as 4- or 8-byte fields widened past
// the classic EOCD's 16- and 32-bit limits.
func DecodeEOCD64(buf []byte) (EOCD64, error) {
	var e EOCD64
	if len(buf) < EOCD64Size {
		return e, zipErrorf("zip64 eocd: need %d bytes, got %d", EOCD64Size, len(buf))
	}
	if binary.LittleEndian.Uint32(buf[0:]) != sigEOCD64 {
		return e, zipErrorf("bad signature: zip64 eocd")
	}
	// buf[4:12] record size, buf[12:14] ver made by, buf[14:16] ver needed - unused here.
	e.Disk = binary.LittleEndian.Uint32(buf[16:])
	e.BeginDisk = binary.LittleEndian.Uint32(buf[20:])
	e.EntsOnDisk = binary.LittleEndian.Uint64(buf[24:])
	e.EntsTotal = binary.LittleEndian.Uint64(buf[32:])
	e.CDSize = binary.LittleEndian.Uint64(buf[40:])
	e.CDOffset = binary.LittleEndian.Uint64(buf[48:])
	return e, nil
}
