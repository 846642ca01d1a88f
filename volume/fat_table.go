package volume

import (
	"encoding/binary"

	fat "github.com/dbalsom/fluxfox-fat"
)

// fatTable reads and writes FAT entries through a windowed sector cache,
// dispatching to the 12/16/32-bit packing for the volume's discriminated
// FATType. Grounded on the teacher's clusterstat/put_clusterstat.
type fatTable struct {
	win *window
	g   geometry
}

func newFATTable(bd BlockDevice, g geometry) *fatTable {
	return &fatTable{win: newWindow(bd), g: g}
}

func (t *fatTable) sectorAndOffset(byteOff int64) (sector int64, off int) {
	bps := int64(t.g.bytesPerSector)
	return t.g.fatStartSector + byteOff/bps, int(byteOff % bps)
}

func (t *fatTable) readByte(byteOff int64) (byte, error) {
	sector, off := t.sectorAndOffset(byteOff)
	if err := t.win.move(sector); err != nil {
		return 0, err
	}
	return t.win.buf[off], nil
}

func (t *fatTable) writeByte(byteOff int64, v byte) error {
	sector, off := t.sectorAndOffset(byteOff)
	if err := t.win.move(sector); err != nil {
		return err
	}
	t.win.buf[off] = v
	t.win.markDirty()
	return nil
}

func (t *fatTable) get(cluster uint32) (uint32, error) {
	switch t.g.fatType {
	case FAT12:
		return t.get12(cluster)
	case FAT16:
		return t.get16(cluster)
	default:
		return t.get32(cluster)
	}
}

func (t *fatTable) set(cluster, value uint32) error {
	switch t.g.fatType {
	case FAT12:
		return t.put12(cluster, value)
	case FAT16:
		return t.put16(cluster, value)
	default:
		return t.put32(cluster, value)
	}
}

func (t *fatTable) get12(cluster uint32) (uint32, error) {
	off := int64(cluster) + int64(cluster)/2
	b0, err := t.readByte(off)
	if err != nil {
		return 0, err
	}
	b1, err := t.readByte(off + 1)
	if err != nil {
		return 0, err
	}
	v := uint16(b0) | uint16(b1)<<8
	if cluster&1 != 0 {
		return uint32(v >> 4), nil
	}
	return uint32(v & 0x0FFF), nil
}

func (t *fatTable) put12(cluster, value uint32) error {
	off := int64(cluster) + int64(cluster)/2
	b0, err := t.readByte(off)
	if err != nil {
		return err
	}
	b1, err := t.readByte(off + 1)
	if err != nil {
		return err
	}
	v := uint16(b0) | uint16(b1)<<8
	if cluster&1 != 0 {
		v = (v & 0x000F) | uint16(value<<4)
	} else {
		v = (v & 0xF000) | uint16(value&0x0FFF)
	}
	if err := t.writeByte(off, byte(v)); err != nil {
		return err
	}
	return t.writeByte(off+1, byte(v>>8))
}

func (t *fatTable) get16(cluster uint32) (uint32, error) {
	off := int64(cluster) * 2
	b0, err := t.readByte(off)
	if err != nil {
		return 0, err
	}
	b1, err := t.readByte(off + 1)
	if err != nil {
		return 0, err
	}
	return uint32(b0) | uint32(b1)<<8, nil
}

func (t *fatTable) put16(cluster, value uint32) error {
	off := int64(cluster) * 2
	if err := t.writeByte(off, byte(value)); err != nil {
		return err
	}
	return t.writeByte(off+1, byte(value>>8))
}

func (t *fatTable) get32(cluster uint32) (uint32, error) {
	off := int64(cluster) * 4
	var b [4]byte
	for i := range b {
		v, err := t.readByte(off + int64(i))
		if err != nil {
			return 0, err
		}
		b[i] = v
	}
	return binary.LittleEndian.Uint32(b[:]) & 0x0FFFFFFF, nil
}

func (t *fatTable) put32(cluster, value uint32) error {
	off := int64(cluster) * 4
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], value&0x0FFFFFFF)
	for i := range b {
		if err := t.writeByte(off+int64(i), b[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *fatTable) isEOC(v uint32) bool {
	switch t.g.fatType {
	case FAT12:
		return v >= 0xFF8
	case FAT16:
		return v >= 0xFFF8
	default:
		return v >= 0x0FFFFFF8
	}
}

func (t *fatTable) eocValue() uint32 {
	switch t.g.fatType {
	case FAT12:
		return 0xFFF
	case FAT16:
		return 0xFFFF
	default:
		return 0x0FFFFFFF
	}
}

// allocOne finds the first free cluster, marks it EOC, and returns it.
func (t *fatTable) allocOne() (uint32, error) {
	for c := uint32(2); c < 2+t.g.clusterCount; c++ {
		v, err := t.get(c)
		if err != nil {
			return 0, err
		}
		if v == 0 {
			if err := t.set(c, t.eocValue()); err != nil {
				return 0, err
			}
			return c, nil
		}
	}
	return 0, fat.ErrNoSpace
}

// clusterChain implements fat.ClusterChain, grounded on the teacher's
// create_chain/remove_chain.
type clusterChain struct {
	t *fatTable
}

func newClusterChain(t *fatTable) *clusterChain { return &clusterChain{t: t} }

func (c *clusterChain) Free(head uint32) error {
	cur := head
	for cur != 0 && !c.t.isEOC(cur) {
		next, err := c.t.get(cur)
		if err != nil {
			return err
		}
		if err := c.t.set(cur, 0); err != nil {
			return err
		}
		cur = next
	}
	return c.t.win.sync()
}

func (c *clusterChain) allocHead() (uint32, error) { return c.t.allocOne() }

// extend appends one new cluster to the chain whose current tail is
// tail, returning the new cluster.
func (c *clusterChain) extend(tail uint32) (uint32, error) {
	next, err := c.t.allocOne()
	if err != nil {
		return 0, err
	}
	if err := c.t.set(tail, next); err != nil {
		return 0, err
	}
	return next, nil
}
