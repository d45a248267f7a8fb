package zipextra

import (
	"encoding/binary"
	"testing"
)

func buildExtra(id uint16, payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint16(buf[0:], id)
	binary.LittleEndian.PutUint16(buf[2:], uint16(len(payload)))
	copy(buf[4:], payload)
	return buf
}

func TestFieldsSkipsUnknownIDs(t *testing.T) {
	unknown := buildExtra(0x9999, []byte{1, 2, 3, 4})
	zip64payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(zip64payload, 123456)
	zip64 := buildExtra(ZIP64ID, zip64payload)

	buf := append(append([]byte{}, unknown...), zip64...)
	fields := Fields(buf)

	if _, ok := fields[0x9999]; !ok {
		t.Error("expected unknown field to still be surfaced")
	}
	got, ok := fields[ZIP64ID]
	if !ok || len(got) != 8 {
		t.Fatalf("zip64 field missing or wrong size: %v", got)
	}
}

func TestFieldsTruncatedTrailerDropped(t *testing.T) {
	buf := []byte{0x01, 0x00, 0xFF, 0xFF} // declares 0xffff bytes but none follow
	fields := Fields(buf)
	if len(fields) != 0 {
		t.Errorf("expected truncated trailing field to be dropped, got %v", fields)
	}
}

func TestParseZip64OnlyOffset(t *testing.T) {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, 99999)

	z := ParseZip64(payload, false, false, true, false)
	if z.UncompressedSize != nil || z.CompressedSize != nil {
		t.Fatal("did not request those fields")
	}
	if z.Offset == nil || *z.Offset != 99999 {
		t.Fatalf("offset = %v, want 99999", z.Offset)
	}
}

func TestParseZip64AllFieldsInOrder(t *testing.T) {
	payload := make([]byte, 20)
	binary.LittleEndian.PutUint64(payload[0:], 1)
	binary.LittleEndian.PutUint64(payload[8:], 2)
	binary.LittleEndian.PutUint32(payload[16:], 3)

	z := ParseZip64(payload, true, true, false, true)
	if z.UncompressedSize == nil || *z.UncompressedSize != 1 {
		t.Errorf("uncompressed = %v", z.UncompressedSize)
	}
	if z.CompressedSize == nil || *z.CompressedSize != 2 {
		t.Errorf("compressed = %v", z.CompressedSize)
	}
	if z.Disk == nil || *z.Disk != 3 {
		t.Errorf("disk = %v", z.Disk)
	}
}

func TestParseZip64TruncatedStopsGracefully(t *testing.T) {
	z := ParseZip64([]byte{1, 2, 3}, true, true, true, false)
	if z.UncompressedSize != nil {
		t.Error("expected no fields parsed from a too-short payload")
	}
}
