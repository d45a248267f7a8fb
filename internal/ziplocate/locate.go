// Package ziplocate finds the central directory of a remote ZIP archive
// without downloading it: it fetches the trailing window that must
// contain the End Of Central Directory record, scans it for the EOCD
// signature, and — for archives that overflow 32 bits — follows the
// ZIP64 locator to the ZIP64 EOCD record.
package ziplocate

import (
	"bytes"
	"context"

	"github.com/jpainter/rangezip/internal/rangehttp"
	"github.com/jpainter/rangezip/internal/zipstruct"
)

// maxCommentSize is the largest value an EOCD comment-length field can
// hold, bounding how far back from the end of the archive the EOCD
// signature can appear.
const maxCommentSize = 0xFFFF

// maxTailWindow is the largest trailing slice of the archive that could
// possibly contain the EOCD record and its comment.
const maxTailWindow = zipstruct.EOCDSize + maxCommentSize

var eocdSig = []byte{0x50, 0x4b, 0x05, 0x06}

// Result is the located central directory's offset and size, both
// measured in bytes from the start of the archive.
type Result struct {
	CDOffset int64
	CDSize   int64
}

// Locate fetches the trailing window of the archive (whose total size is
// totalSize) and returns the central directory's offset and size. It
// rejects multi-disk archives and follows the ZIP64 EOCD locator when
// the classic EOCD reports a 16- or 32-bit overflow sentinel.
func Locate(ctx context.Context, c *rangehttp.Client, totalSize int64) (Result, error) {
	tailLen := int64(maxTailWindow)
	if tailLen > totalSize {
		tailLen = totalSize
	}
	tailStart := totalSize - tailLen

	tail, err := fetch(ctx, c, tailStart, totalSize)
	if err != nil {
		return Result{}, zipstruct.NewError("fetching EOCD search window: %v", err)
	}

	idx := bytes.LastIndex(tail, eocdSig)
	if idx < 0 {
		return Result{}, zipstruct.NewError("no end-of-central-directory record found in trailing %d bytes", tailLen)
	}
	if len(tail)-idx < zipstruct.EOCDSize {
		return Result{}, zipstruct.NewError("end-of-central-directory record truncated")
	}

	eocd, err := zipstruct.DecodeEOCD(tail[idx:])
	if err != nil {
		return Result{}, err
	}
	if eocd.Disk != eocd.BeginDisk || eocd.EntsOnDisk != eocd.EntsTotal {
		return Result{}, zipstruct.NewError("multipart unsupported")
	}

	if !eocd.NeedsZip64() {
		return Result{
			CDOffset: int64(eocd.CDOffset),
			CDSize:   int64(eocd.CDSize),
		}, nil
	}

	eocdAbsOffset := tailStart + int64(idx)
	locatorOffset := eocdAbsOffset - zipstruct.EOCD64LocatorSize
	if locatorOffset < 0 {
		return Result{}, zipstruct.NewError("zip64 eocd locator would precede start of archive")
	}

	locBuf, err := fetch(ctx, c, locatorOffset, eocdAbsOffset)
	if err != nil {
		return Result{}, zipstruct.NewError("fetching zip64 eocd locator: %v", err)
	}
	locator, err := zipstruct.DecodeEOCD64Locator(locBuf)
	if err != nil {
		return Result{}, err
	}
	if locator.NumDisks > 1 || locator.Disk != 0 {
		return Result{}, zipstruct.NewError("multi-disk archives are not supported")
	}

	recStart := int64(locator.EOCD64Offset)
	recBuf, err := fetch(ctx, c, recStart, recStart+zipstruct.EOCD64Size)
	if err != nil {
		return Result{}, zipstruct.NewError("fetching zip64 eocd record: %v", err)
	}
	rec, err := zipstruct.DecodeEOCD64(recBuf)
	if err != nil {
		return Result{}, err
	}
	if rec.Disk != rec.BeginDisk || rec.EntsOnDisk != rec.EntsTotal {
		return Result{}, zipstruct.NewError("multipart unsupported")
	}

	return Result{
		CDOffset: int64(rec.CDOffset),
		CDSize:   int64(rec.CDSize),
	}, nil
}

func fetch(ctx context.Context, c *rangehttp.Client, start, end int64) ([]byte, error) {
	body, err := c.Range(ctx, start, end, false)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	buf := make([]byte, end-start)
	n := 0
	for n < len(buf) {
		m, err := body.Read(buf[n:])
		n += m
		if err != nil {
			break
		}
	}
	return buf[:n], checkFull(n, len(buf))
}

func checkFull(got, want int) error {
	if got != want {
		return zipstruct.NewError("short read: got %d bytes, want %d", got, want)
	}
	return nil
}
