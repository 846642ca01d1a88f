package fat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLFNChecksumKnownVector(t *testing.T) {
	// "README  TXT" is the padded short name for readme.txt.
	name := [11]byte{'R', 'E', 'A', 'D', 'M', 'E', ' ', ' ', 'T', 'X', 'T'}
	sum := lfnChecksum(name)

	require.Equal(t, byte(0x73), sum)
}

func TestSplitLFNAndAssembleRoundTrip(t *testing.T) {
	shortName := [11]byte{'V', 'E', 'R', 'Y', 'L', '~', '1', ' ', 'T', 'X', 'T'}
	checksum := lfnChecksum(shortName)
	longName := "very-long-dir-name.txt"

	frags := splitLFN(longName, checksum)
	require.NotEmpty(t, frags)

	// On-disk order is LAST fragment first.
	require.True(t, frags[0].IsLast())

	var asm lfnAssembler
	for _, f := range frags {
		asm.push(f)
	}
	asm.validate(shortName)
	require.Equal(t, longName, asm.finalize())
}

func TestLFNAssemblerRejectsBadChecksum(t *testing.T) {
	longName := "short.txt"
	frags := splitLFN(longName, 0x42)

	var asm lfnAssembler
	for _, f := range frags {
		asm.push(f)
	}
	asm.validate([11]byte{'O', 'T', 'H', 'E', 'R', ' ', ' ', ' ', 'T', 'X', 'T'})
	require.Empty(t, asm.finalize())
}

func TestLFNAssemblerRejectsOutOfOrderFragment(t *testing.T) {
	shortName := [11]byte{'A', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}
	checksum := lfnChecksum(shortName)
	frags := splitLFN("aaaaaaaaaaaaaaaaaaaaaaaaaaaaa", checksum) // > 13 units, needs 3 fragments
	require.GreaterOrEqual(t, len(frags), 2)

	var asm lfnAssembler
	asm.push(frags[0])
	// Skip the middle fragment(s): feed the lowest-indexed fragment next.
	asm.push(frags[len(frags)-1])
	asm.validate(shortName)
	require.Empty(t, asm.finalize())
}

func TestSplitLFNEmptyName(t *testing.T) {
	require.Nil(t, splitLFN("", 0))
}
