package fat

import (
	"io"
	"strings"
)

// DirEntry is one short slot together with its assembled long name
// (spec.md §3.4): the unit of insertion and deletion, and the type
// yielded by directory iteration and lookup.
type DirEntry struct {
	Short    ShortEntry
	LongName string

	// EntryPos is the absolute volume byte offset of the short slot.
	// File writeback does not use it; it locates the slot at EndOff-32
	// in the parent directory stream instead.
	EntryPos int64

	// BeginOff and EndOff delimit the logical entry's byte range within
	// its directory stream: [BeginOff, EndOff), a multiple of 32 bytes.
	BeginOff int64
	EndOff   int64

	// fs is the non-owning borrow of the owning filesystem needed by
	// ToFile/ToDir, attached by Dir when it produces a DirEntry.
	fs *Filesystem

	// parentStream is the directory stream this entry's short slot was
	// read from, retained so a File opened from this entry can write
	// its size and mtime back in place on Sync/Close.
	parentStream Stream
}

// ShortFileName formats the raw 8.3 name as "BASE.EXT" (or bare "BASE"
// with no extension), trimmed of space padding.
func (e *DirEntry) ShortFileName() string { return e.ShortName() }

// ShortName formats the raw 8.3 name as "BASE.EXT" (or bare "BASE" with
// no extension), trimmed of space padding.
func (e *DirEntry) ShortName() string {
	base := strings.TrimRight(string(e.Short.Name[0:8]), " ")
	ext := strings.TrimRight(string(e.Short.Name[8:11]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// FileName returns the long name if one was assembled, else the short
// name, per spec.md §4.5's case-insensitive find semantics.
func (e *DirEntry) FileName() string {
	if e.LongName != "" {
		return e.LongName
	}
	return e.ShortName()
}

func (e *DirEntry) IsDir() bool  { return e.Short.IsDir() }
func (e *DirEntry) IsFile() bool { return !e.Short.IsDir() }
func (e *DirEntry) Len() uint32  { return e.Short.Size }

// Iterator streams logical entries out of a directory's raw slot stream
// (spec.md §4.2). It is one-pass and single-ownership; restart by
// re-seeking the underlying Stream and constructing a fresh Iterator.
// After yielding an error once it terminates and yields no more items.
type Iterator struct {
	s     Stream
	asm   lfnAssembler
	begin int64
	done  bool
	err   error
}

// NewIterator returns an iterator over s starting at its current cursor
// position (normally offset 0 of the directory stream).
func NewIterator(s Stream) *Iterator {
	return &Iterator{s: s}
}

// Next returns the next logical entry, or (nil, nil) at a clean
// end-of-directory (terminator slot or stream EOF), or (nil, err) once
// an unrecoverable error has occurred.
func (it *Iterator) Next() (*DirEntry, error) {
	if it.done {
		return nil, it.err
	}
	var buf [slotSize]byte
	for {
		entryPos, err := it.s.AbsPos()
		if err != nil {
			return nil, it.fail(ioErr("abspos", err))
		}
		curOff, err := it.s.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, it.fail(ioErr("seek", err))
		}

		n, err := io.ReadFull(it.s, buf[:])
		if err != nil {
			if n == 0 && err == io.EOF {
				it.done = true
				return nil, nil
			}
			return nil, it.fail(ErrCorruptedDirectory)
		}

		switch classifySlot(buf[:]) {
		case slotShort:
			se := decodeShortEntry(buf[:])
			switch {
			case se.IsTerminator():
				it.done = true
				return nil, nil
			case se.IsFree() || se.IsVolumeID():
				it.asm.clear()
				it.begin = curOff + slotSize
			default:
				it.asm.validate(se.Name)
				long := it.asm.finalize()
				entry := &DirEntry{
					Short:    se,
					LongName: long,
					EntryPos: entryPos,
					BeginOff: it.begin,
					EndOff:   curOff + slotSize,
				}
				it.asm.clear()
				it.begin = curOff + slotSize
				return entry, nil
			}
		case slotLFN:
			f := decodeLFNFragment(buf[:])
			if f.IsFree() {
				it.asm.clear()
				it.begin = curOff + slotSize
			} else {
				it.asm.push(f)
			}
		}
	}
}

func (it *Iterator) fail(err error) error {
	it.done = true
	it.err = err
	return err
}
