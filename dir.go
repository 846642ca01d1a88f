package fat

import (
	"io"
	"log/slog"
	"time"

	"github.com/dbalsom/fluxfox-fat/internal/ucs2"
)

// Dir is a value handle onto a directory's raw slot stream, borrowing
// its Filesystem non-owningly. It exposes the directory manipulator
// operations of spec.md §4.5.
type Dir struct {
	fs     *Filesystem
	stream Stream
}

// EntryIter wraps an Iterator to attach each yielded DirEntry's
// Filesystem and parent-stream borrows before handing it to the caller.
type EntryIter struct {
	it *Iterator
	d  *Dir
}

func (ei *EntryIter) Next() (*DirEntry, error) {
	ei.d.fs.trace("dir:next")
	e, err := ei.it.Next()
	if err != nil {
		ei.d.fs.warn("dir:next", slog.String("err", err.Error()))
		return nil, err
	}
	if e != nil {
		e.fs = ei.d.fs
		e.parentStream = ei.d.stream
	}
	return e, nil
}

// Iter returns a fresh iterator positioned at the start of d's slot
// stream.
func (d *Dir) Iter() (*EntryIter, error) {
	d.fs.trace("dir:iter")
	if _, err := d.stream.Seek(0, io.SeekStart); err != nil {
		return nil, ioErr("seek", err)
	}
	return &EntryIter{it: NewIterator(d.stream), d: d}, nil
}

// FindEntry performs a case-insensitive search by file name (long name
// if present, else short name), per spec.md §4.5.
func (d *Dir) FindEntry(name string) (*DirEntry, error) {
	d.fs.trace("dir:find", slog.String("name", name))
	it, err := d.Iter()
	if err != nil {
		return nil, err
	}
	target := foldUpper(name)
	for {
		e, err := it.Next()
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, ErrNotFound
		}
		if foldUpper(e.FileName()) == target {
			return e, nil
		}
	}
}

// IsEmpty resolves Open Question 4: true iff the directory contains no
// logical entries other than "." and ".." (checked via the Directory
// attribute bit plus the literal space-padded short-name bytes, not
// reconstructed long names).
func (d *Dir) IsEmpty() (bool, error) {
	it, err := d.Iter()
	if err != nil {
		return false, err
	}
	for {
		e, err := it.Next()
		if err != nil {
			return false, err
		}
		if e == nil {
			return true, nil
		}
		if e.Short.IsDir() && isDotName(e.Short.Name) {
			continue
		}
		return false, nil
	}
}

var (
	dotName    = [11]byte{'.', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}
	dotDotName = [11]byte{'.', '.', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}
)

func isDotName(name [11]byte) bool {
	return name == dotName || name == dotDotName
}

// OpenDir resolves path (relative to d) to a subdirectory. An empty path
// returns d itself.
func (d *Dir) OpenDir(path string) (*Dir, error) {
	d.fs.trace("dir:open_dir", slog.String("path", path))
	comps := splitPath(path)
	if len(comps) == 0 {
		return d, nil
	}
	parent, name, err := d.walkToParent(comps)
	if err != nil {
		return nil, err
	}
	e, err := parent.FindEntry(name)
	if err != nil {
		return nil, err
	}
	return e.ToDir()
}

// OpenFile resolves path (relative to d) to an existing file.
func (d *Dir) OpenFile(path string) (*File, error) {
	d.fs.trace("dir:open_file", slog.String("path", path))
	comps := splitPath(path)
	if len(comps) == 0 {
		return nil, ErrInvalidInput
	}
	parent, name, err := d.walkToParent(comps)
	if err != nil {
		return nil, err
	}
	e, err := parent.FindEntry(name)
	if err != nil {
		return nil, err
	}
	if e.IsDir() {
		return nil, ErrInvalidInput
	}
	return e.ToFile()
}

// CreateFile resolves path's parent and either opens the existing final
// component (create-or-open semantics, per spec.md §4.5's Create
// preconditions) or synthesizes and writes a new zero-length entry.
func (d *Dir) CreateFile(path string) (*File, error) {
	d.fs.trace("dir:create_file", slog.String("path", path))
	comps := splitPath(path)
	if len(comps) == 0 {
		return nil, ErrInvalidInput
	}
	parent, name, err := d.walkToParent(comps)
	if err != nil {
		return nil, err
	}
	existing, err := parent.FindEntry(name)
	switch {
	case err == nil:
		if existing.IsDir() {
			return nil, ErrInvalidInput
		}
		return existing.ToFile()
	case err != ErrNotFound:
		return nil, err
	}
	entry, err := parent.create(name)
	if err != nil {
		return nil, err
	}
	return entry.ToFile()
}

// Remove deletes the entry named by path. Removing a non-empty directory
// fails with ErrDirectoryNotEmpty.
func (d *Dir) Remove(path string) error {
	d.fs.trace("dir:remove", slog.String("path", path))
	comps := splitPath(path)
	if len(comps) == 0 {
		return ErrInvalidInput
	}
	parent, name, err := d.walkToParent(comps)
	if err != nil {
		return err
	}
	e, err := parent.FindEntry(name)
	if err != nil {
		return err
	}
	if e.IsDir() {
		sub, err := e.ToDir()
		if err != nil {
			return err
		}
		empty, err := sub.IsEmpty()
		if err != nil {
			return err
		}
		if !empty {
			d.fs.warn("dir:remove", slog.String("path", path), slog.String("err", "not empty"))
			return ErrDirectoryNotEmpty
		}
	}
	if cluster := e.Short.Cluster(); cluster != 0 {
		if err := parent.fs.chain.Free(cluster); err != nil {
			return ioErr("free chain", err)
		}
	}
	return parent.markRangeFree(e.BeginOff, e.EndOff)
}

func (d *Dir) markRangeFree(begin, end int64) error {
	d.fs.trace("dir:mark_range_free", slog.Int64("begin", begin), slog.Int64("end", end))
	var buf [slotSize]byte
	for off := begin; off < end; off += slotSize {
		if _, err := d.stream.Seek(off, io.SeekStart); err != nil {
			return ioErr("seek", err)
		}
		if _, err := io.ReadFull(d.stream, buf[:]); err != nil {
			d.fs.warn("dir:mark_range_free", slog.String("err", "corrupted directory"))
			return ErrCorruptedDirectory
		}
		switch classifySlot(buf[:]) {
		case slotShort:
			buf[offName] = freeMarker
		case slotLFN:
			buf[offLFNOrder] = freeMarker
		}
		if _, err := d.stream.Seek(off, io.SeekStart); err != nil {
			return ioErr("seek", err)
		}
		if _, err := d.stream.Write(buf[:]); err != nil {
			return ioErr("write", err)
		}
	}
	return ioErr("flush", d.stream.Flush())
}

func (d *Dir) existingShortNames() (map[[11]byte]bool, error) {
	it, err := d.Iter()
	if err != nil {
		return nil, err
	}
	set := make(map[[11]byte]bool)
	for {
		e, err := it.Next()
		if err != nil {
			return nil, err
		}
		if e == nil {
			return set, nil
		}
		set[e.Short.Name] = true
	}
}

// create implements spec.md §4.5's Create steps 1-7 for a regular file:
// reject over-long names, synthesize a collision-free short name, find a
// free run of slots for the LFN sequence plus short entry, and write
// them.
func (d *Dir) create(name string) (*DirEntry, error) {
	d.fs.trace("dir:create", slog.String("name", name))
	units := ucs2.Encode(name)
	if len(units) > 255 {
		return nil, ErrInvalidInput
	}

	existing, err := d.existingShortNames()
	if err != nil {
		return nil, err
	}
	shortName, err := synthesizeShortName(name, func(c [11]byte) bool { return existing[c] })
	if err != nil {
		d.fs.warn("dir:create", slog.String("name", name), slog.String("err", err.Error()))
		return nil, err
	}

	checksum := lfnChecksum(shortName)
	frags := splitLFN(name, checksum)
	total := len(frags) + 1

	off, err := findFreeRun(d.stream, total)
	if err != nil {
		return nil, err
	}

	needed := off + int64(total)*slotSize
	if needed > d.stream.Len() {
		if err := d.stream.Grow(needed - d.stream.Len()); err != nil {
			return nil, err
		}
	}

	if _, err := d.stream.Seek(off, io.SeekStart); err != nil {
		return nil, ioErr("seek", err)
	}
	var buf [slotSize]byte
	for _, f := range frags {
		f.encode(buf[:])
		if _, err := d.stream.Write(buf[:]); err != nil {
			return nil, ioErr("write", err)
		}
	}

	var se ShortEntry
	se.Name = shortName
	now := newDateTime(time.Now())
	date, clock := encodeDateTime(now)
	se.CreateDate, se.CreateTime = date, clock
	se.ModifyDate, se.ModifyTime = date, clock
	se.AccessDate = date

	entryPos, err := d.stream.AbsPos()
	if err != nil {
		return nil, ioErr("abspos", err)
	}

	se.encode(buf[:])
	if _, err := d.stream.Write(buf[:]); err != nil {
		return nil, ioErr("write", err)
	}
	if err := d.stream.Flush(); err != nil {
		return nil, ioErr("flush", err)
	}

	return &DirEntry{
		Short:        se,
		EntryPos:     entryPos,
		BeginOff:     off,
		EndOff:       off + int64(total)*slotSize,
		fs:           d.fs,
		parentStream: d.stream,
	}, nil
}
