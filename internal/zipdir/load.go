package zipdir

import (
	"github.com/jpainter/rangezip/internal/cp437"
	"github.com/jpainter/rangezip/internal/zipextra"
	"github.com/jpainter/rangezip/internal/zipstruct"
)

const utf8FlagBit = 1 << 11
const encryptedFlagBit = 1 << 0

// decodeCentralDirectory walks buf, which must be exactly the bytes of
// the central directory ([cd_offset, cd_offset+cd_size)), and returns
// one ZipEntryInfo per record in directory order. Entry count is never
// cross-checked against the EOCD's ents_total; a malformed directory
// surfaces as a decode failure on the offending record instead. An
// entry whose compression method this reader does not implement still
// loads, as CompressionUnsupported; only extracting that entry fails.
func decodeCentralDirectory(buf []byte) ([]ZipEntryInfo, error) {
	var entries []ZipEntryInfo
	cursor := 0
	for cursor < len(buf) {
		if len(buf)-cursor < zipstruct.CDFHSize {
			return nil, zipstruct.NewError("central directory: trailing %d bytes too short for a header", len(buf)-cursor)
		}
		h, err := zipstruct.DecodeCentralDirectoryFileHeader(buf[cursor:])
		if err != nil {
			return nil, err
		}
		cursor += zipstruct.CDFHSize

		need := int(h.PathSize) + int(h.ExtraSize) + int(h.CommentSize)
		if len(buf)-cursor < need {
			return nil, zipstruct.NewError("central directory: record trailer truncated")
		}

		rawPath := buf[cursor : cursor+int(h.PathSize)]
		cursor += int(h.PathSize)
		extraBuf := buf[cursor : cursor+int(h.ExtraSize)]
		cursor += int(h.ExtraSize)
		cursor += int(h.CommentSize)

		path := cp437.Decode(rawPath, h.BitFlag&utf8FlagBit != 0)

		compression := compressionFromMethod(h.Compression)

		uncompressedSize := uint64(h.UncompressedSize)
		compressedSize := uint64(h.CompressedSize)
		offset := uint64(h.Offset)

		if h.UsesZip64Size() || h.UsesZip64Offset() {
			if fields := zipextra.Fields(extraBuf); len(fields) > 0 {
				if payload, ok := fields[zipextra.ZIP64ID]; ok {
					z := zipextra.ParseZip64(payload,
						h.UncompressedSize == zipstruct.Sentinel32,
						h.CompressedSize == zipstruct.Sentinel32,
						h.Offset == zipstruct.Sentinel32,
						false,
					)
					if z.UncompressedSize != nil {
						uncompressedSize = *z.UncompressedSize
					}
					if z.CompressedSize != nil {
						compressedSize = *z.CompressedSize
					}
					if z.Offset != nil {
						offset = *z.Offset
					}
				}
			}
		}

		entries = append(entries, ZipEntryInfo{
			Path:                 path,
			RawOffset:            int64(offset),
			FileSize:             int64(uncompressedSize),
			CompressedSize:       int64(compressedSize),
			Checksum:             h.CRC32,
			Compression:          compression,
			RawCompressionMethod: h.Compression,
			ModifiedDate:         decodeDOSDateTime(h.ModDate, h.ModTime),
			Encrypted:            h.BitFlag&encryptedFlagBit != 0,
			InternalAttrs:        h.InternalAttrs,
			ExternalAttrs:        h.ExternalAttrs,
		})
	}
	return entries, nil
}
