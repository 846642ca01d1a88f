package volume

import (
	"fmt"
	"io"
	"log/slog"

	fat "github.com/dbalsom/fluxfox-fat"
)

// Volume holds the mounted state backing a Filesystem: the parsed
// geometry, FAT table and cluster chain, kept around so callers can
// inspect volume-level facts (FAT type, free space) alongside the
// directory subsystem's Filesystem. A *Volume takes no locks and is not
// safe for concurrent use from multiple goroutines.
type Volume struct {
	bd    BlockDevice
	g     geometry
	table *fatTable
	chain *clusterChain
	fs    *fat.Filesystem
}

// FATType reports which of FAT12/16/32 the mounted volume uses.
func (v *Volume) FATType() FATType { return v.g.fatType }

// Filesystem returns the directory subsystem's entry point.
func (v *Volume) Filesystem() *fat.Filesystem { return v.fs }

// FreeClusters counts unallocated clusters by scanning the FAT, for
// diagnostics; it is not used on any hot path.
func (v *Volume) FreeClusters() (uint32, error) {
	var free uint32
	for c := uint32(2); c < 2+v.g.clusterCount; c++ {
		val, err := v.table.get(c)
		if err != nil {
			return 0, err
		}
		if val == 0 {
			free++
		}
	}
	return free, nil
}

// MountConfig configures Mount. Logger defaults to a discard logger.
type MountConfig struct {
	Logger *slog.Logger
}

// Mount parses bd's boot sector and assembles a ready-to-use Volume and
// fat.Filesystem over it, wiring the FAT table and cluster chain as the
// directory subsystem's ClusterChain collaborator and a FileStream
// factory as its Stream collaborator. Grounded on the teacher's
// f_mount/find_volumes assembly sequence.
func Mount(bd BlockDevice, cfg MountConfig) (*Volume, error) {
	boot := make([]byte, bd.BlockSize())
	if _, err := bd.ReadBlocks(boot, 0); err != nil {
		return nil, fmt.Errorf("volume: reading boot sector: %w", err)
	}
	g, err := parseBPB(boot)
	if err != nil {
		return nil, err
	}

	table := newFATTable(bd, g)
	chain := newClusterChain(table)

	v := &Volume{bd: bd, g: g, table: table, chain: chain}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	v.fs = fat.NewFilesystem(fat.FilesystemConfig{
		Chain:      chain,
		OpenRoot:   v.openRoot,
		OpenStream: v.openStream,
		Logger:     log,
	})
	return v, nil
}

// openRoot opens the volume's root directory: the FAT12/16 fixed region,
// or the FAT32 root cluster's chain.
func (v *Volume) openRoot() (fat.Stream, error) {
	if v.g.fatType == FAT32 {
		return newChainStream(v.bd, v.g, v.chain, v.g.rootCluster, v.chainLength(v.g.rootCluster)), nil
	}
	return newFixedStream(v.bd, v.g), nil
}

// openStream opens a Stream over a non-root entry's cluster chain.
// cluster == 0 means no cluster is allocated yet (a freshly created,
// empty file); the returned stream allocates its first cluster lazily
// on the first write past end, via FileStream.Grow.
func (v *Volume) openStream(cluster uint32) (fat.Stream, error) {
	return newChainStream(v.bd, v.g, v.chain, cluster, v.chainLength(cluster)), nil
}

// chainLength walks head's chain to compute its current logical length
// in bytes. An entry with no cluster yet (head == 0) has length 0;
// FileStream.Grow allocates its first cluster lazily.
func (v *Volume) chainLength(head uint32) int64 {
	if head == 0 {
		return 0
	}
	clusterBytes := int64(v.g.sectorsPerClus) * int64(v.g.bytesPerSector)
	var n int64
	cur := head
	for {
		n++
		next, err := v.table.get(cur)
		if err != nil || v.table.isEOC(next) {
			break
		}
		cur = next
	}
	return n * clusterBytes
}
