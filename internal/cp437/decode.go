// Package cp437 decodes ZIP entry filenames under the two encodings the
// format allows: legacy CP437 (the default, predating general Unicode
// support) and UTF-8 (signalled by bit 11 of the general-purpose bit
// flag).
package cp437

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw filename bytes from a central directory file
// header into a path string. utf8Flag is bit 11 of the header's
// general-purpose bit flag: when set, raw is already UTF-8 and any
// malformed byte sequence is replaced with the Unicode replacement
// character; when clear, raw is CP437 and every byte maps to exactly
// one rune.
func Decode(raw []byte, utf8Flag bool) string {
	if utf8Flag {
		if utf8.Valid(raw) {
			return string(raw)
		}
		return utf8fix(raw)
	}
	// CP437 has no invalid byte sequences; NewDecoder().String never fails.
	s, _ := charmap.CodePage437.NewDecoder().String(string(raw))
	return s
}

// utf8fix rewrites a byte sequence that claims to be UTF-8 but contains
// malformed subsequences, replacing each one with U+FFFD per the
// standard decode-and-resynchronize algorithm that utf8.DecodeRune
// already implements.
func utf8fix(raw []byte) string {
	var out []rune
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		out = append(out, r)
		raw = raw[size:]
	}
	return string(out)
}
