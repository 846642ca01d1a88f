package fat

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// upperCaser performs Unicode-aware uppercasing for short-name synthesis
// and case-insensitive lookup, in place of a naive byte-wise ASCII
// uppercase.
var upperCaser = cases.Upper(language.Und)

func foldUpper(s string) string { return upperCaser.String(s) }

// illegalShortChars mirrors the 8.3 forbidden character set.
const illegalShortChars = "\"*+,/:;<=>?[]|"

func sanitizeShortChar(r rune) byte {
	switch {
	case r < 0x20 || r > 0x7E:
		return '_'
	case r == ' ':
		return '_'
	case strings.ContainsRune(illegalShortChars, r):
		return '_'
	default:
		return byte(r)
	}
}

// splitBaseExt splits name on its last '.', per spec.md §4.4 step 2. A
// name with no dot, or one starting with a dot, has no extension.
func splitBaseExt(name string) (base, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	return name[:dot], name[dot+1:]
}

// shortNameBase implements the base algorithm of spec.md §4.4: uppercase,
// split on the last dot, take up to 8 base / 3 extension characters,
// space-pad the rest. No collision resolution.
func shortNameBase(longName string) [11]byte {
	upper := foldUpper(longName)
	base, ext := splitBaseExt(upper)

	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	bi := 0
	for _, r := range base {
		if bi >= 8 {
			break
		}
		out[bi] = sanitizeShortChar(r)
		bi++
	}
	ei := 0
	for _, r := range ext {
		if ei >= 3 {
			break
		}
		out[8+ei] = sanitizeShortChar(r)
		ei++
	}
	return out
}

// synthesizeShortName resolves Open Question 3: it first tries the bare
// §4.4 base name, then BASE~n tails of shrinking base length, against
// conflicts (which reports whether an 11-byte candidate already names a
// sibling). Returns ErrNoSpace once the numeric-tail namespace for an
// 8-character base is exhausted.
func synthesizeShortName(longName string, conflicts func([11]byte) bool) ([11]byte, error) {
	name := shortNameBase(longName)
	if !conflicts(name) {
		return name, nil
	}

	upper := foldUpper(longName)
	baseStr, _ := splitBaseExt(upper)
	rawBase := make([]byte, 0, len(baseStr))
	for _, r := range baseStr {
		rawBase = append(rawBase, sanitizeShortChar(r))
	}

	for n := 1; n < 1_000_000; n++ {
		suffix := []byte(fmt.Sprintf("~%d", n))
		maxBase := 8 - len(suffix)
		if maxBase < 1 {
			return [11]byte{}, ErrNoSpace
		}
		b := rawBase
		if len(b) > maxBase {
			b = b[:maxBase]
		}
		var candidate [11]byte
		for i := range candidate {
			candidate[i] = ' '
		}
		copy(candidate[:], b)
		copy(candidate[len(b):], suffix)
		copy(candidate[8:], name[8:11])
		if !conflicts(candidate) {
			return candidate, nil
		}
	}
	return [11]byte{}, ErrNoSpace
}
