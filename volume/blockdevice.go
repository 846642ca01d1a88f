// Package volume is a from-scratch FAT12/16/32 volume layer: BPB
// parsing, FAT type discrimination, FAT table cluster-chain management
// and a windowed sector cache, assembled by Mount into a ready-to-use
// github.com/dbalsom/fluxfox-fat Filesystem. None of this belongs to the
// directory subsystem itself; package fat only ever sees the
// ClusterChain and Stream interfaces this package implements.
package volume

import (
	"errors"
	"fmt"
	"os"
)

// BlockDevice is the raw sector-addressed I/O interface a Volume mounts
// onto. Grounded on the teacher's own BlockDevice interface and
// generalized slightly (BlockSize is part of the interface here rather
// than passed separately to Mount).
type BlockDevice interface {
	ReadBlocks(dst []byte, startBlock int64) (int, error)
	WriteBlocks(data []byte, startBlock int64) (int, error)
	EraseBlocks(startBlock, numBlocks int64) error
	BlockSize() int
}

// ByteDevice is a []byte-backed BlockDevice, for in-memory volumes and
// tests. Adapted from the teacher's test-only BlockByteSlice into a
// production implementation.
type ByteDevice struct {
	buf       []byte
	blockSize int
}

// NewByteDevice wraps buf as a BlockDevice with the given block size.
// len(buf) must be a multiple of blockSize.
func NewByteDevice(buf []byte, blockSize int) (*ByteDevice, error) {
	if blockSize <= 0 || len(buf)%blockSize != 0 {
		return nil, fmt.Errorf("volume: buffer length %d not a multiple of block size %d", len(buf), blockSize)
	}
	return &ByteDevice{buf: buf, blockSize: blockSize}, nil
}

func (b *ByteDevice) BlockSize() int { return b.blockSize }
func (b *ByteDevice) Size() int64    { return int64(len(b.buf)) }

func (b *ByteDevice) ReadBlocks(dst []byte, startBlock int64) (int, error) {
	off, end, err := b.span(startBlock, int64(len(dst)))
	if err != nil {
		return 0, err
	}
	return copy(dst, b.buf[off:end]), nil
}

func (b *ByteDevice) WriteBlocks(data []byte, startBlock int64) (int, error) {
	off, end, err := b.span(startBlock, int64(len(data)))
	if err != nil {
		return 0, err
	}
	return copy(b.buf[off:end], data), nil
}

func (b *ByteDevice) EraseBlocks(startBlock, numBlocks int64) error {
	if startBlock < 0 || numBlocks <= 0 {
		return errors.New("volume: invalid erase parameters")
	}
	start := startBlock * int64(b.blockSize)
	end := start + numBlocks*int64(b.blockSize)
	if end > int64(len(b.buf)) {
		return errors.New("volume: erase past end of buffer")
	}
	clear(b.buf[start:end])
	return nil
}

func (b *ByteDevice) span(startBlock, n int64) (off, end int64, err error) {
	if startBlock < 0 {
		return 0, 0, errors.New("volume: invalid startBlock")
	}
	if n%int64(b.blockSize) != 0 {
		return 0, 0, errors.New("volume: transfer size not a multiple of block size")
	}
	off = startBlock * int64(b.blockSize)
	end = off + n
	if end > int64(len(b.buf)) {
		return 0, 0, fmt.Errorf("volume: access past end of buffer: %d > %d", end, len(b.buf))
	}
	return off, end, nil
}

// FileDevice is an *os.File-backed BlockDevice, for mounting a real disk
// image.
type FileDevice struct {
	f         *os.File
	blockSize int
}

// NewFileDevice wraps f as a BlockDevice with the given block size.
func NewFileDevice(f *os.File, blockSize int) *FileDevice {
	return &FileDevice{f: f, blockSize: blockSize}
}

func (f *FileDevice) BlockSize() int { return f.blockSize }

func (f *FileDevice) ReadBlocks(dst []byte, startBlock int64) (int, error) {
	return f.f.ReadAt(dst, startBlock*int64(f.blockSize))
}

func (f *FileDevice) WriteBlocks(data []byte, startBlock int64) (int, error) {
	return f.f.WriteAt(data, startBlock*int64(f.blockSize))
}

func (f *FileDevice) EraseBlocks(startBlock, numBlocks int64) error {
	zero := make([]byte, f.blockSize)
	for i := int64(0); i < numBlocks; i++ {
		if _, err := f.f.WriteAt(zero, (startBlock+i)*int64(f.blockSize)); err != nil {
			return err
		}
	}
	return nil
}
