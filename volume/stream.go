package volume

import (
	"errors"
	"io"

	fat "github.com/dbalsom/fluxfox-fat"
)

// FileStream implements fat.Stream over either a cluster chain or, for a
// FAT12/16 root directory, the fixed region following the FAT tables.
// Grounded on the teacher's f_read/f_write sector-at-a-time loop.
type FileStream struct {
	bd    BlockDevice
	g     geometry
	chain *clusterChain
	win   *window

	fixed     bool
	startClus uint32 // 0 until the chain's first cluster is allocated
	length    int64
	pos       int64
}

// newFixedStream wraps the FAT12/16 fixed root directory region.
func newFixedStream(bd BlockDevice, g geometry) *FileStream {
	return &FileStream{
		bd:     bd,
		g:      g,
		win:    newWindow(bd),
		fixed:  true,
		length: int64(g.rootDirSectors) * int64(g.bytesPerSector),
	}
}

// newChainStream wraps a cluster chain starting at startCluster (0 if
// not yet allocated) with the given logical length.
func newChainStream(bd BlockDevice, g geometry, chain *clusterChain, startCluster uint32, length int64) *FileStream {
	return &FileStream{
		bd:        bd,
		g:         g,
		chain:     chain,
		win:       newWindow(bd),
		startClus: startCluster,
		length:    length,
	}
}

// FirstCluster implements fat.ClusterAware.
func (s *FileStream) FirstCluster() uint32 { return s.startClus }

func (s *FileStream) Len() int64 { return s.length }

func (s *FileStream) clusterBytes() int64 {
	return int64(s.g.sectorsPerClus) * int64(s.g.bytesPerSector)
}

// sectorFor resolves a logical byte offset to an absolute sector number
// and the byte offset within that sector.
func (s *FileStream) sectorFor(off int64) (sector int64, within int, err error) {
	bps := int64(s.g.bytesPerSector)
	if s.fixed {
		return s.g.rootDirStart + off/bps, int(off % bps), nil
	}
	clusterBytes := s.clusterBytes()
	clusterIdx := off / clusterBytes
	offInClus := off % clusterBytes

	cur := s.startClus
	for i := int64(0); i < clusterIdx; i++ {
		next, err := s.chain.t.get(cur)
		if err != nil {
			return 0, 0, err
		}
		cur = next
	}
	sectorInClus := offInClus / bps
	within = int(offInClus % bps)
	sector = s.g.dataStart + int64(cur-2)*int64(s.g.sectorsPerClus) + sectorInClus
	return sector, within, nil
}

func (s *FileStream) ioAt(off int64, buf []byte, write bool) (int, error) {
	sector, within, err := s.sectorFor(off)
	if err != nil {
		return 0, err
	}
	if err := s.win.move(sector); err != nil {
		return 0, err
	}
	n := s.g.bytesPerSector - within
	if n > len(buf) {
		n = len(buf)
	}
	dst := s.win.at(within)
	if write {
		copy(dst[:n], buf[:n])
		s.win.markDirty()
	} else {
		copy(buf[:n], dst[:n])
	}
	return n, nil
}

func (s *FileStream) Read(p []byte) (int, error) {
	if s.pos >= s.length {
		return 0, io.EOF
	}
	total := 0
	for total < len(p) && s.pos < s.length {
		want := p[total:]
		if remaining := s.length - s.pos; int64(len(want)) > remaining {
			want = want[:remaining]
		}
		n, err := s.ioAt(s.pos, want, false)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		total += n
		s.pos += int64(n)
	}
	return total, nil
}

func (s *FileStream) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > s.length {
		if err := s.Grow(end - s.length); err != nil {
			return 0, err
		}
	}
	total := 0
	for total < len(p) {
		n, err := s.ioAt(s.pos, p[total:], true)
		if err != nil {
			return total, err
		}
		total += n
		s.pos += int64(n)
	}
	return total, nil
}

func (s *FileStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = s.length + offset
	default:
		return 0, errors.New("volume: invalid whence")
	}
	if newPos < 0 {
		return 0, errors.New("volume: negative seek position")
	}
	s.pos = newPos
	return s.pos, nil
}

func (s *FileStream) Flush() error { return s.win.sync() }

func (s *FileStream) AbsPos() (int64, error) {
	sector, within, err := s.sectorFor(s.pos)
	if err != nil {
		return 0, err
	}
	return sector*int64(s.g.bytesPerSector) + int64(within), nil
}

// Grow extends the stream by n bytes, zero-filling the new region, per
// spec.md §4.6's requirement that newly allocated clusters be zeroed.
// A fixed FAT12/16 root region cannot grow (Open Question 5).
func (s *FileStream) Grow(n int64) error {
	if n <= 0 {
		return nil
	}
	if s.fixed {
		return fat.ErrNoSpace
	}

	newLen := s.length + n
	clusterBytes := s.clusterBytes()
	curClusters := int64(0)
	if s.startClus != 0 {
		curClusters = (s.length + clusterBytes - 1) / clusterBytes
	}
	neededClusters := (newLen + clusterBytes - 1) / clusterBytes
	toAlloc := neededClusters - curClusters

	if toAlloc > 0 {
		var tail uint32
		if s.startClus == 0 {
			head, err := s.chain.allocHead()
			if err != nil {
				return err
			}
			if err := s.zeroCluster(head); err != nil {
				return err
			}
			s.startClus = head
			tail = head
			toAlloc--
		} else {
			t, err := s.lastCluster()
			if err != nil {
				return err
			}
			tail = t
		}
		for i := int64(0); i < toAlloc; i++ {
			next, err := s.chain.extend(tail)
			if err != nil {
				return err
			}
			if err := s.zeroCluster(next); err != nil {
				return err
			}
			tail = next
		}
	} else if err := s.zeroRange(s.length, newLen); err != nil {
		return err
	}

	s.length = newLen
	return nil
}

func (s *FileStream) lastCluster() (uint32, error) {
	cur := s.startClus
	for {
		next, err := s.chain.t.get(cur)
		if err != nil {
			return 0, err
		}
		if s.chain.t.isEOC(next) {
			return cur, nil
		}
		cur = next
	}
}

func (s *FileStream) zeroCluster(cluster uint32) error {
	zero := make([]byte, s.g.bytesPerSector)
	base := s.g.dataStart + int64(cluster-2)*int64(s.g.sectorsPerClus)
	for i := 0; i < s.g.sectorsPerClus; i++ {
		if err := s.win.move(base + int64(i)); err != nil {
			return err
		}
		copy(s.win.buf, zero)
		s.win.markDirty()
	}
	return nil
}

func (s *FileStream) zeroRange(begin, end int64) error {
	zero := make([]byte, end-begin)
	for begin < end {
		n, err := s.ioAt(begin, zero[:end-begin], true)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		begin += int64(n)
	}
	return nil
}
