package fat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeEntry appends a short entry, preceded by its LFN fragments if
// longName is non-empty, to buf.
func encodeEntry(buf []byte, longName string, shortName [11]byte) []byte {
	var se ShortEntry
	se.Name = shortName
	if longName != "" {
		checksum := lfnChecksum(shortName)
		for _, f := range splitLFN(longName, checksum) {
			var fb [slotSize]byte
			f.encode(fb[:])
			buf = append(buf, fb[:]...)
		}
	}
	var sb [slotSize]byte
	se.encode(sb[:])
	buf = append(buf, sb[:]...)
	return buf
}

func TestIteratorShortNameOnly(t *testing.T) {
	var data []byte
	data = encodeEntry(data, "", [11]byte{'S', 'H', 'O', 'R', 'T', ' ', ' ', ' ', 'T', 'X', 'T'})
	s := newMemStream(data)

	it := NewIterator(s)
	e, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, "SHORT.TXT", e.FileName())

	e, err = it.Next()
	require.NoError(t, err)
	require.Nil(t, e)
}

func TestIteratorAssemblesLongName(t *testing.T) {
	var data []byte
	data = encodeEntry(data, "very-long-dir-name.txt", [11]byte{'V', 'E', 'R', 'Y', '-', 'L', '~', '1', 'T', 'X', 'T'})
	s := newMemStream(data)

	it := NewIterator(s)
	e, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, "very-long-dir-name.txt", e.FileName())
	require.Equal(t, "VERY-L~1.TXT", e.ShortName())
}

func TestIteratorSkipsFreeSlots(t *testing.T) {
	var data []byte
	var free [slotSize]byte
	free[offName] = freeMarker
	data = append(data, free[:]...)
	data = encodeEntry(data, "", [11]byte{'K', 'E', 'E', 'P', ' ', ' ', ' ', ' ', ' ', ' ', ' '})
	s := newMemStream(data)

	it := NewIterator(s)
	e, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, "KEEP", e.FileName())
}

func TestIteratorStopsAtTerminator(t *testing.T) {
	var data []byte
	data = encodeEntry(data, "", [11]byte{'A', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '})
	var term [slotSize]byte
	data = append(data, term[:]...)
	data = encodeEntry(data, "", [11]byte{'B', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '})
	s := newMemStream(data)

	it := NewIterator(s)
	e, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, "A", e.FileName())

	e, err = it.Next()
	require.NoError(t, err)
	require.Nil(t, e) // the terminator hides the later "B" entry
}

func TestIteratorCorruptFragmentFallsBackToShortName(t *testing.T) {
	shortName := [11]byte{'F', 'A', 'L', 'L', 'B', 'A', 'C', 'K', 'T', 'X', 'T'}
	checksum := lfnChecksum(shortName)
	frags := splitLFN("fallback-name.txt", checksum)

	var data []byte
	// Corrupt the checksum of the first-written (LAST) fragment.
	frags[0].Checksum ^= 0xFF
	for _, f := range frags {
		var fb [slotSize]byte
		f.encode(fb[:])
		data = append(data, fb[:]...)
	}
	var se ShortEntry
	se.Name = shortName
	var sb [slotSize]byte
	se.encode(sb[:])
	data = append(data, sb[:]...)

	s := newMemStream(data)
	it := NewIterator(s)
	e, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, "FALLBACK.TXT", e.FileName())
}
