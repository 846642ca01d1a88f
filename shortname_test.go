package fat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortNameBaseBasic(t *testing.T) {
	got := shortNameBase("readme.txt")
	want := [11]byte{'R', 'E', 'A', 'D', 'M', 'E', ' ', ' ', 'T', 'X', 'T'}
	require.Equal(t, want, got)
}

func TestShortNameBaseNoExtension(t *testing.T) {
	got := shortNameBase("very")
	want := [11]byte{'V', 'E', 'R', 'Y', ' ', ' ', ' ', ' ', ' ', ' ', ' '}
	require.Equal(t, want, got)
}

func TestShortNameBaseTruncatesAndSanitizes(t *testing.T) {
	got := shortNameBase("very-long-dir-name.txt")
	want := [11]byte{'V', 'E', 'R', 'Y', '-', 'L', 'O', 'N', 'T', 'X', 'T'}
	require.Equal(t, want, got)
}

func TestShortNameBaseIllegalCharacters(t *testing.T) {
	got := shortNameBase("a*b?c.txt")
	want := [11]byte{'A', '_', 'B', '_', 'C', ' ', ' ', ' ', 'T', 'X', 'T'}
	require.Equal(t, want, got)
}

func TestSynthesizeShortNameNoCollision(t *testing.T) {
	name, err := synthesizeShortName("short.txt", func([11]byte) bool { return false })
	require.NoError(t, err)
	require.Equal(t, shortNameBase("short.txt"), name)
}

func TestSynthesizeShortNameCollisionSuffix(t *testing.T) {
	base := shortNameBase("very-long-dir-name.txt")
	seen := map[[11]byte]bool{base: true}
	name, err := synthesizeShortName("very-long-dir-name.txt", func(c [11]byte) bool { return seen[c] })
	require.NoError(t, err)
	require.NotEqual(t, base, name)
	require.Equal(t, byte('V'), name[0])
	require.Equal(t, byte('~'), name[6])
	require.Equal(t, byte('1'), name[7])
	require.Equal(t, [3]byte{'T', 'X', 'T'}, [3]byte(name[8:11]))
}

func TestSynthesizeShortNameSecondCollision(t *testing.T) {
	base := shortNameBase("very-long-dir-name.txt")
	first, _ := synthesizeShortName("very-long-dir-name.txt", func(c [11]byte) bool { return c == base })
	seen := map[[11]byte]bool{base: true, first: true}
	second, err := synthesizeShortName("very-long-dir-name.txt", func(c [11]byte) bool { return seen[c] })
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.Equal(t, byte('2'), second[7])
}

func TestSynthesizeShortNameExhaustion(t *testing.T) {
	_, err := synthesizeShortName("a.txt", func([11]byte) bool { return true })
	require.ErrorIs(t, err, ErrNoSpace)
}
