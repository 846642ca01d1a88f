package fat

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Filesystem is the single owned resource backing every Dir and File
// value (spec.md §9's recursive-borrowing note): it supplies the
// ClusterChain collaborator and a way to open a Stream over any
// cluster's chain. Dir and File are value handles that hold a
// non-owning borrow (a pointer) back to it.
type Filesystem struct {
	chain    ClusterChain
	openRoot func() (Stream, error)
	open     func(cluster uint32) (Stream, error)
	log      *slog.Logger
}

// FilesystemConfig supplies a Filesystem's two out-of-scope
// collaborators.
type FilesystemConfig struct {
	// Chain is the cluster layer.
	Chain ClusterChain

	// OpenRoot opens a Stream over the volume's root directory: the
	// FAT12/16 fixed root region, or the FAT32 root cluster's chain.
	OpenRoot func() (Stream, error)

	// OpenStream opens a Stream over a non-root entry's cluster chain.
	// cluster == 0 means the entry has no cluster allocated yet (a
	// freshly created, empty file); the returned Stream must allocate
	// its first cluster lazily on the first write past end.
	OpenStream func(cluster uint32) (Stream, error)

	// Logger receives trace-level diagnostics; defaults to a discard
	// logger when nil.
	Logger *slog.Logger
}

// NewFilesystem builds a Filesystem from its collaborators. Package
// volume's Mount is the usual way to obtain a ready-made one backed by a
// real FAT12/16/32 volume.
func NewFilesystem(cfg FilesystemConfig) *Filesystem {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Filesystem{chain: cfg.Chain, openRoot: cfg.OpenRoot, open: cfg.OpenStream, log: log}
}

// RootDir opens the volume's root directory.
func (fs *Filesystem) RootDir() (*Dir, error) {
	fs.trace("fs:root_dir")
	s, err := fs.openRoot()
	if err != nil {
		fs.warn("fs:root_dir", slog.String("err", err.Error()))
		return nil, ioErr("open root", err)
	}
	return &Dir{fs: fs, stream: s}, nil
}

func (fs *Filesystem) trace(msg string, args ...any) {
	fs.log.Log(context.Background(), slogLevelTrace, msg, args...)
}
func (fs *Filesystem) warn(msg string, args ...any) { fs.log.Warn(msg, args...) }

// slogLevelTrace sits below slog.LevelDebug for the chattiest
// diagnostics (every directory operation and iterator step), matching the teacher's approach of
// reserving a custom trace level rather than spamming at Debug.
const slogLevelTrace = slog.LevelDebug - 2

// Attributes returns the entry's raw attribute byte.
func (e *DirEntry) Attributes() byte { return e.Short.Attr }

// Created, Accessed and Modified decode the entry's FAT timestamps.
func (e *DirEntry) Created() time.Time {
	dt := decodeDateTime(e.Short.CreateDate, e.Short.CreateTime)
	return dt.Time(time.UTC).Add(time.Duration(e.Short.CreateTimeTenth) * 10 * time.Millisecond)
}

func (e *DirEntry) Accessed() time.Time {
	dt := decodeDateTime(e.Short.AccessDate, 0)
	return dt.Time(time.UTC)
}

func (e *DirEntry) Modified() time.Time {
	dt := decodeDateTime(e.Short.ModifyDate, e.Short.ModifyTime)
	return dt.Time(time.UTC)
}

// ToDir opens e as a directory. Callers must check IsDir first; ToDir on
// a file entry fails with ErrNotADirectory.
func (e *DirEntry) ToDir() (*Dir, error) {
	e.fs.trace("dir:to_dir", slog.String("name", e.ShortName()))
	if !e.IsDir() {
		return nil, ErrNotADirectory
	}
	s, err := e.fs.open(e.Short.Cluster())
	if err != nil {
		e.fs.warn("dir:to_dir", slog.String("err", err.Error()))
		return nil, ioErr("open dir", err)
	}
	return &Dir{fs: e.fs, stream: s}, nil
}

// ToFile opens e as a file. Callers must check IsFile first; ToFile on a
// directory entry fails with ErrInvalidInput.
func (e *DirEntry) ToFile() (*File, error) {
	e.fs.trace("fs:to_file", slog.String("name", e.ShortName()), slog.Uint64("size", uint64(e.Short.Size)))
	if e.IsDir() {
		return nil, ErrInvalidInput
	}
	s, err := e.fs.open(e.Short.Cluster())
	if err != nil {
		e.fs.warn("fs:to_file", slog.String("err", err.Error()))
		return nil, ioErr("open file", err)
	}
	return &File{fs: e.fs, stream: s, entry: *e, size: int64(e.Short.Size)}, nil
}

// File is a value handle onto a file's data, backed by a Stream over its
// cluster chain. It borrows its Filesystem non-owningly; the caller is
// responsible for not letting a File outlive the Filesystem it came
// from.
//
// size is the entry's logical length (Short.Size), kept separate from
// the backing Stream's length: a chain Stream's length is a whole
// number of clusters, which over-reports how much of the last cluster
// is real file data. pos tracks File's own logical cursor for the same
// reason; Stream.Seek's whence=End resolves against cluster padding,
// not EOF.
type File struct {
	fs     *Filesystem
	stream Stream
	entry  DirEntry
	size   int64
	pos    int64
}

func (f *File) Read(p []byte) (int, error) {
	if f.pos >= f.size {
		return 0, io.EOF
	}
	if remaining := f.size - f.pos; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := f.stream.Read(p)
	f.pos += int64(n)
	return n, err
}

func (f *File) Write(p []byte) (int, error) {
	n, err := f.stream.Write(p)
	f.pos += int64(n)
	if f.pos > f.size {
		f.size = f.pos
	}
	return n, err
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.pos + offset
	case io.SeekEnd:
		target = f.size + offset
	default:
		return 0, ErrInvalidInput
	}
	newPos, err := f.stream.Seek(target, io.SeekStart)
	if err != nil {
		return 0, ioErr("seek", err)
	}
	f.pos = newPos
	return f.pos, nil
}

func (f *File) Len() int64 { return f.size }

// Sync flushes pending writes and, when the file's size or first
// cluster changed, writes the size, first cluster and a fresh
// modification time back to its short entry in the parent directory
// stream (see writeback).
func (f *File) Sync() error {
	f.fs.trace("f_sync", slog.Uint64("size", uint64(f.size)))
	if err := f.stream.Flush(); err != nil {
		return ioErr("flush", err)
	}
	return f.writeback()
}

// Close flushes and writes back; it is equivalent to Sync.
func (f *File) Close() error {
	f.fs.trace("f_close")
	return f.Sync()
}

// writeback rewrites the file's short entry slot, in its parent
// directory's own stream, at the directory-relative offset recorded when
// the entry was looked up. This reuses the two given collaborators
// (Stream.Seek/Write) rather than requiring a third, volume-wide
// absolute-write primitive; EntryPos remains available on DirEntry as
// the spec's absolute-position bookkeeping field.
func (f *File) writeback() error {
	changed := false
	if uint32(f.size) != f.entry.Short.Size {
		f.entry.Short.Size = uint32(f.size)
		changed = true
	}
	if ca, ok := f.stream.(ClusterAware); ok {
		if c := ca.FirstCluster(); c != f.entry.Short.Cluster() {
			f.entry.Short.SetCluster(c)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	now := newDateTime(time.Now())
	date, clock := encodeDateTime(now)
	f.entry.Short.ModifyDate = date
	f.entry.Short.ModifyTime = clock

	if f.entry.parentStream == nil {
		return nil
	}
	slotOff := f.entry.EndOff - slotSize
	if _, err := f.entry.parentStream.Seek(slotOff, io.SeekStart); err != nil {
		return ioErr("seek", err)
	}
	var buf [slotSize]byte
	f.entry.Short.encode(buf[:])
	if _, err := f.entry.parentStream.Write(buf[:]); err != nil {
		return ioErr("write", err)
	}
	return ioErr("flush", f.entry.parentStream.Flush())
}
