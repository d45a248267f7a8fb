// Package zipdir loads a ZIP archive's central directory into a stable
// list of entry descriptors and exposes the archive-wide operations
// (Open, List, Stat, Find, Close) built on top of it.
package zipdir

import (
	"strings"
	"time"
)

// Compression identifies the codec an entry's bytes were compressed
// with. A method this reader does not implement is legal in the
// directory as CompressionUnsupported; it is only fatal once
// extraction of that specific entry is attempted.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionDeflate
	CompressionBzip2
	CompressionLZMA
	CompressionZstandard
	CompressionUnsupported
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "NONE"
	case CompressionDeflate:
		return "DEFLATE"
	case CompressionBzip2:
		return "BZIP2"
	case CompressionLZMA:
		return "LZMA"
	case CompressionZstandard:
		return "ZSTANDARD"
	case CompressionUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// compressionFromMethod maps the CDFH/LFH two-byte method code to a
// Compression, returning CompressionUnsupported for any method this
// reader does not implement rather than failing the caller.
func compressionFromMethod(method uint16) Compression {
	switch method {
	case 0:
		return CompressionNone
	case 8:
		return CompressionDeflate
	case 12:
		return CompressionBzip2
	case 14:
		return CompressionLZMA
	case 93:
		return CompressionZstandard
	default:
		return CompressionUnsupported
	}
}

// DOSDateTime is the raw six-tuple decoded from an MS-DOS date/time
// pair, preserved alongside the derived time.Time for callers that
// want the original field values.
type DOSDateTime struct {
	Year, Month, Day       int
	Hour, Minute, Second   int
}

// ModTime converts the six-tuple to a time.Time in UTC.
func (d DOSDateTime) ModTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, time.UTC)
}

// decodeDOSDateTime decodes an MS-DOS date/time pair. Bits 0-4 of the
// date are the day of month, bits 5-8 the month, bits 9-15 years since
// 1980. Bits 0-4 of the time are seconds/2, bits 5-10 the minute, bits
// 11-15 the hour. The documented bug to avoid is computing the year as
// `date >> 8 + 1980` instead of `(date >> 9) + 1980`.
func decodeDOSDateTime(dosDate, dosTime uint16) DOSDateTime {
	return DOSDateTime{
		Year:   int(dosDate>>9) + 1980,
		Month:  int(dosDate >> 5 & 0xf),
		Day:    int(dosDate & 0x1f),
		Hour:   int(dosTime >> 11),
		Minute: int(dosTime >> 5 & 0x3f),
		Second: int(dosTime&0x1f) * 2,
	}
}

// ZipEntryInfo describes one archive entry. It is immutable after
// directory load.
type ZipEntryInfo struct {
	Path                 string
	RawOffset            int64
	FileSize             int64
	CompressedSize       int64
	Checksum             uint32
	Compression          Compression
	RawCompressionMethod uint16
	ModifiedDate         DOSDateTime
	Encrypted            bool
	InternalAttrs        uint16
	ExternalAttrs        uint32
}

// IsDir reports whether the entry is a directory placeholder.
func (e ZipEntryInfo) IsDir() bool { return strings.HasSuffix(e.Path, "/") }

// ModTime returns the entry's modification time as a UTC time.Time.
func (e ZipEntryInfo) ModTime() time.Time { return e.ModifiedDate.ModTime() }
