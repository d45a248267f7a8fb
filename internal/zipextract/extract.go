// Package zipextract streams one archive entry's uncompressed bytes
// into a sink, reporting progress as it goes. It re-reads the entry's
// local file header for the authoritative data offset, since the
// central directory's filename/extra-field sizes are not guaranteed to
// match.
package zipextract

import (
	"context"
	"hash/crc32"
	"io"

	"github.com/jpainter/rangezip/internal/rangehttp"
	"github.com/jpainter/rangezip/internal/zipdir"
	"github.com/jpainter/rangezip/internal/zipstruct"
)

// Sink accepts append-only writes of an entry's decompressed bytes.
type Sink interface {
	Write(p []byte) (int, error)
}

// Option configures an extraction.
type Option func(*config)

type config struct {
	verifyChecksum bool
	chunkSize      int
}

// WithChecksumVerification enables CRC-32 verification of the
// decompressed stream. The final chunk is withheld from the sink (and
// from progress reporting) until the running checksum is known to
// match entry.Checksum; on mismatch extraction fails instead of
// yielding that chunk.
func WithChecksumVerification() Option {
	return func(c *config) { c.verifyChecksum = true }
}

const defaultChunkSize = 32 * 1024

// Progress reports bytes written to the sink in one step.
type Progress = int

// Extract streams entry's decompressed content into sink, calling
// onProgress once per chunk with the number of uncompressed bytes just
// written. It fails before any I/O if entry is encrypted, and is a
// no-op yielding no progress calls if entry.CompressedSize is zero.
func Extract(ctx context.Context, client *rangehttp.Client, entry zipdir.ZipEntryInfo, sink Sink, onProgress func(Progress), opts ...Option) error {
	if entry.Encrypted {
		return zipstruct.NewError("encrypted unsupported")
	}
	if entry.CompressedSize == 0 {
		return nil
	}

	cfg := config{chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	lfhBuf, err := rangeFull(ctx, client, entry.RawOffset, entry.RawOffset+zipstruct.LFHSize)
	if err != nil {
		return zipstruct.NewError("reading local file header: %v", err)
	}
	lfh, err := zipstruct.DecodeLocalFileHeader(lfhBuf)
	if err != nil {
		return err
	}

	dataOffset := entry.RawOffset + zipstruct.LFHSize + int64(lfh.PathSize) + int64(lfh.ExtraSize)

	body, err := client.Range(ctx, dataOffset, dataOffset+entry.CompressedSize, true)
	if err != nil {
		return zipstruct.NewError("reading entry data: %v", err)
	}
	defer body.Close()

	decomp, closer, err := newDecompressor(entry.Compression, entry.RawCompressionMethod, body)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	if cfg.verifyChecksum {
		return extractVerified(decomp, entry.Checksum, sink, onProgress, cfg.chunkSize)
	}
	return extractUnverified(decomp, sink, onProgress, cfg.chunkSize)
}

// extractUnverified writes each chunk to the sink as soon as it is
// decompressed.
func extractUnverified(decomp io.Reader, sink Sink, onProgress func(Progress), chunkSize int) error {
	buf := make([]byte, chunkSize)
	for {
		n, rerr := decomp.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return werr
			}
			if onProgress != nil {
				onProgress(n)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return zipstruct.NewError("decompressing entry: %v", rerr)
		}
	}
}

// extractVerified holds back the most recently decompressed chunk so
// that, once the stream ends, the running CRC-32 can be checked before
// that final chunk is written to the sink.
func extractVerified(decomp io.Reader, want uint32, sink Sink, onProgress func(Progress), chunkSize int) error {
	hasher := crc32.NewIEEE()
	buf := make([]byte, chunkSize)
	var pending []byte

	flushPending := func() error {
		if len(pending) == 0 {
			return nil
		}
		n := len(pending)
		if _, werr := sink.Write(pending); werr != nil {
			return werr
		}
		if onProgress != nil {
			onProgress(n)
		}
		pending = nil
		return nil
	}

	for {
		n, rerr := decomp.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			if err := flushPending(); err != nil {
				return err
			}
			pending = append(pending, buf[:n]...)
		}
		if rerr == io.EOF {
			if hasher.Sum32() != want {
				return zipstruct.NewError("checksum mismatch: got %x, want %x", hasher.Sum32(), want)
			}
			return flushPending()
		}
		if rerr != nil {
			return zipstruct.NewError("decompressing entry: %v", rerr)
		}
	}
}

func rangeFull(ctx context.Context, client *rangehttp.Client, start, end int64) ([]byte, error) {
	body, err := client.Range(ctx, start, end, false)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	buf := make([]byte, end-start)
	if _, err := io.ReadFull(body, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
