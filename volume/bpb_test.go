package volume

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBPBRejectsBadSignature(t *testing.T) {
	sector := make([]byte, 512)
	_, err := parseBPB(sector)
	require.Error(t, err)
}

func TestParseBPBRejectsShortSector(t *testing.T) {
	_, err := parseBPB(make([]byte, 64))
	require.Error(t, err)
}

func TestParseBPBDiscriminatesFAT12(t *testing.T) {
	g, err := parseBPB(buildFAT12Image()[:512])
	require.NoError(t, err)
	require.Equal(t, FAT12, g.fatType)
	require.Equal(t, 512, g.bytesPerSector)
	require.Equal(t, 1, g.sectorsPerClus)
	require.EqualValues(t, 10, g.clusterCount)
	require.EqualValues(t, 2, g.rootDirStart)
	require.EqualValues(t, 3, g.dataStart)
}

func TestParseBPBDiscriminatesFAT16(t *testing.T) {
	// 4085 clusters is the smallest cluster count classified as FAT16.
	sector := make([]byte, 512)
	const (
		bytesPerSec  = 512
		secPerClus   = 1
		reservedSecs = 1
		numFATs      = 1
		rootEntCount = 16
		fatSize      = 34 // enough 16-bit entries for >4085 clusters
		clusters     = 4085
	)
	rootDirSectors := (rootEntCount*32 + bytesPerSec - 1) / bytesPerSec
	dataStart := reservedSecs + numFATs*fatSize + rootDirSectors
	totalSectors := dataStart + clusters*secPerClus

	binary.LittleEndian.PutUint16(sector[bpbBytsPerSec:], bytesPerSec)
	sector[bpbSecPerClus] = secPerClus
	binary.LittleEndian.PutUint16(sector[bpbRsvdSecCnt:], reservedSecs)
	sector[bpbNumFATs] = numFATs
	binary.LittleEndian.PutUint16(sector[bpbRootEntCnt:], rootEntCount)
	binary.LittleEndian.PutUint32(sector[bpbTotSec32:], uint32(totalSectors))
	binary.LittleEndian.PutUint16(sector[bpbFATSz16:], fatSize)
	binary.LittleEndian.PutUint16(sector[bootSigOff:], bootSigValue)

	g, err := parseBPB(sector)
	require.NoError(t, err)
	require.Equal(t, FAT16, g.fatType)
	require.EqualValues(t, clusters, g.clusterCount)
}

func TestParseBPBDiscriminatesFAT32(t *testing.T) {
	sector := make([]byte, 512)
	const (
		bytesPerSec  = 512
		secPerClus   = 8
		reservedSecs = 32
		numFATs      = 2
		fatSize      = 2000
		clusters     = 70000
		rootClus     = 2
	)
	dataStart := reservedSecs + numFATs*fatSize
	totalSectors := dataStart + clusters*secPerClus

	binary.LittleEndian.PutUint16(sector[bpbBytsPerSec:], bytesPerSec)
	sector[bpbSecPerClus] = secPerClus
	binary.LittleEndian.PutUint16(sector[bpbRsvdSecCnt:], reservedSecs)
	sector[bpbNumFATs] = numFATs
	binary.LittleEndian.PutUint16(sector[bpbRootEntCnt:], 0) // FAT32 has no fixed root
	binary.LittleEndian.PutUint32(sector[bpbTotSec32:], uint32(totalSectors))
	binary.LittleEndian.PutUint32(sector[bpbFATSz32:], fatSize)
	binary.LittleEndian.PutUint32(sector[bpbRootClus32:], rootClus)
	binary.LittleEndian.PutUint16(sector[bootSigOff:], bootSigValue)

	g, err := parseBPB(sector)
	require.NoError(t, err)
	require.Equal(t, FAT32, g.fatType)
	require.EqualValues(t, rootClus, g.rootCluster)
	require.EqualValues(t, 0, g.rootDirSectors)
	require.EqualValues(t, dataStart, g.dataStart)
}
