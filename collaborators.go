package fat

import "io"

// ClusterChain is the cluster-layer collaborator the directory
// subsystem treats as out of scope (spec §1): it allocates, frees, and
// traverses chains of clusters in the FAT and converts between a
// logical offset in a chain and an absolute volume byte position.
type ClusterChain interface {
	// Free releases every cluster in the chain starting at head. Freeing
	// a zero head (no cluster) is a no-op.
	Free(head uint32) error
}

// Stream is the file-stream collaborator: a seekable byte stream
// exposing a cluster chain (or, for a FAT12/16 root directory, a fixed
// region) as a flat sequence of bytes, growing the backing chain on
// write past end.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker

	// Flush forces any buffered writes to the underlying volume.
	Flush() error

	// AbsPos returns the absolute volume byte offset corresponding to
	// the stream's current cursor. Directory code uses this to compute
	// a logical entry's EntryPos.
	AbsPos() (int64, error)

	// Grow extends the stream's logical length by n bytes, zero-filling
	// the new region, without moving the cursor. It returns ErrNoSpace
	// if the stream cannot grow (a fixed FAT12/16 root region once
	// full).
	Grow(n int64) error

	// Len reports the stream's current logical length in bytes.
	Len() int64
}

// ClusterAware is an optional capability a Stream implementation may
// provide to report the first cluster of its backing chain. File uses
// it, via a type assertion, to keep a newly grown chain's head in sync
// with its directory entry on Sync/Close, without widening the Stream
// contract spec.md §6.3 defines for every collaborator.
type ClusterAware interface {
	FirstCluster() uint32
}
