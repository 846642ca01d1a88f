package volume

import (
	"errors"
	"fmt"

	"github.com/dbalsom/fluxfox-fat/internal/mbr"
)

// FindFATPartition scans a whole-disk image's Master Boot Record for
// partition table entries whose type byte identifies a FAT12, FAT16 or
// FAT32 partition, and returns the starting LBA (in sectors of
// bd.BlockSize() bytes) of the one to mount. When more than one FAT
// entry is present, the bootable one wins, matching how a BIOS picks
// which partition to hand off to; ties and the no-bootable case fall
// back to table order. It returns an error if bd has no valid MBR or no
// FAT partition entry.
func FindFATPartition(bd BlockDevice) (startLBA uint32, err error) {
	sector := make([]byte, bd.BlockSize())
	if _, err := bd.ReadBlocks(sector, 0); err != nil {
		return 0, fmt.Errorf("volume: reading MBR: %w", err)
	}
	boot, err := mbr.ToBootSector(sector)
	if err != nil {
		return 0, fmt.Errorf("volume: %w", err)
	}
	if boot.BootSignature() != mbr.BootSignature {
		return 0, errors.New("volume: no MBR boot signature present")
	}

	var found bool
	var firstLBA uint32
	for i := 0; i < 4; i++ {
		pte := boot.PartitionTable(i)
		switch pte.PartitionType() {
		case mbr.PartitionTypeFAT12, mbr.PartitionTypeFAT16,
			mbr.PartitionTypeFAT32CHS, mbr.PartitionTypeFAT32LBA:
			if pte.Attributes().IsBootable() {
				return pte.StartLBA(), nil
			}
			if !found {
				firstLBA = pte.StartLBA()
				found = true
			}
		}
	}
	if found {
		return firstLBA, nil
	}
	return 0, errors.New("volume: no FAT partition entry found in MBR")
}

// partitionDevice offsets every block access by a fixed sector count, so
// a partition's FAT volume can be mounted as an ordinary whole-disk
// BlockDevice. Grounded on the teacher's approach of layering a second
// BlockDevice rather than threading an offset through bpb/fatTable.
type partitionDevice struct {
	bd       BlockDevice
	startLBA int64
}

// NewPartitionDevice returns a BlockDevice view of bd starting at
// startLBA, as located by FindFATPartition.
func NewPartitionDevice(bd BlockDevice, startLBA uint32) BlockDevice {
	return &partitionDevice{bd: bd, startLBA: int64(startLBA)}
}

func (p *partitionDevice) BlockSize() int { return p.bd.BlockSize() }

func (p *partitionDevice) ReadBlocks(buf []byte, startBlock int64) (int, error) {
	return p.bd.ReadBlocks(buf, p.startLBA+startBlock)
}

func (p *partitionDevice) WriteBlocks(buf []byte, startBlock int64) (int, error) {
	return p.bd.WriteBlocks(buf, p.startLBA+startBlock)
}

func (p *partitionDevice) EraseBlocks(startBlock, numBlocks int64) error {
	return p.bd.EraseBlocks(p.startLBA+startBlock, numBlocks)
}
