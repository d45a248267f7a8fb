package zipextract

import (
	"compress/bzip2"
	"io"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/flate"
	"github.com/therootcompany/xz/lzma"

	"github.com/jpainter/rangezip/internal/zipdir"
	"github.com/jpainter/rangezip/internal/zipstruct"
)

// newDecompressor wraps raw to decode entry's codec. The returned
// reader yields uncompressed bytes; closer is non-nil when the codec
// needs to release resources beyond closing raw itself. rawMethod is
// the CDFH's original two-byte method code, used only to report which
// method was unrecognized; compression methods this reader does not
// implement reach this function as zipdir.CompressionUnsupported
// rather than failing directory load.
func newDecompressor(compression zipdir.Compression, rawMethod uint16, raw io.Reader) (io.Reader, io.Closer, error) {
	switch compression {
	case zipdir.CompressionNone:
		return raw, nil, nil
	case zipdir.CompressionDeflate:
		// Raw DEFLATE, no zlib wrapper: window-bits -15 equivalent.
		r := flate.NewReader(raw)
		return r, r, nil
	case zipdir.CompressionBzip2:
		return bzip2.NewReader(raw), nil, nil
	case zipdir.CompressionLZMA:
		r, err := lzma.NewReader(raw)
		if err != nil {
			return nil, nil, zipstruct.NewError("constructing lzma decoder: %v", err)
		}
		if rc, ok := r.(io.Closer); ok {
			return r, rc, nil
		}
		return r, nil, nil
	case zipdir.CompressionZstandard:
		r := zstd.NewReader(raw)
		return r, r, nil
	default:
		return nil, nil, zipstruct.NewError("codec unsupported: method %d", rawMethod)
	}
}
