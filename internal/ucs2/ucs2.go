// Package ucs2 converts between UTF-8 strings and the UCS-2 code unit
// sequences FAT long file name entries store on disk. Each LFN fragment
// carries 13 16-bit code units; codepoints outside the BMP round-trip as
// UTF-16 surrogate pairs, which on-disk FAT LFNs also use in practice
// despite the "UCS-2" label in the Microsoft documentation.
package ucs2

import (
	"unicode/utf16"
	"unicode/utf8"
)

const (
	replacementUnit uint16 = 0xFFFD
	padUnit         uint16 = 0x0000
	termUnit        uint16 = 0xFFFF
)

// Encode converts s into a sequence of UCS-2/UTF-16 code units.
func Encode(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// Decode converts units back into a UTF-8 string, stopping at the first
// NUL or 0xFFFF terminator/padding unit, matching the LFN fragment
// padding convention (name terminated by 0x0000 then filled with 0xFFFF).
func Decode(units []uint16) string {
	for i, u := range units {
		if u == padUnit || u == termUnit {
			units = units[:i]
			break
		}
	}
	if len(units) == 0 {
		return ""
	}
	runes := utf16.Decode(units)
	return string(runes)
}

// DecodeRuneReplacing decodes one UTF-8 rune from s, returning
// unicode.ReplacementChar (U+FFFD) and a size of 1 for invalid input.
func DecodeRuneReplacing(s string) (r rune, size int) {
	r, size = utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return rune(replacementUnit), 1
	}
	return r, size
}
