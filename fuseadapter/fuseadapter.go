//go:build linux

// Package fuseadapter exposes a fat.Filesystem as a read-only FUSE mount,
// grounded on ostafen-digler's RecoverFS/Dir/File node pair.
package fuseadapter

import (
	"context"
	"io"
	"os"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	fatfs "github.com/dbalsom/fluxfox-fat"
)

// FS adapts a fat.Filesystem to bazil.org/fuse's fs.FS, mounting the
// filesystem's root directory read-only.
type FS struct {
	root *fatfs.Dir
}

// New returns a FUSE filesystem rooted at root.
func New(root *fatfs.Dir) *FS {
	return &FS{root: root}
}

func (f *FS) Root() (fs.Node, error) {
	return &Dir{dir: f.root}, nil
}

// Dir implements fs.Node, fs.NodeStringLookuper and fs.HandleReadDirAller
// over a fat.Dir.
type Dir struct {
	dir *fatfs.Dir

	mtx    sync.Mutex
	cached []*fatfs.DirEntry
	primed bool
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) entries() ([]*fatfs.DirEntry, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if d.primed {
		return d.cached, nil
	}
	it, err := d.dir.Iter()
	if err != nil {
		return nil, err
	}
	var list []*fatfs.DirEntry
	for {
		e, err := it.Next()
		if err != nil {
			return nil, err
		}
		if e == nil {
			break
		}
		list = append(list, e)
	}
	d.cached = list
	d.primed = true
	return list, nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	list, err := d.entries()
	if err != nil {
		return nil, fuse.EIO
	}
	for _, e := range list {
		if e.FileName() != name {
			continue
		}
		if e.IsDir() {
			sub, err := e.ToDir()
			if err != nil {
				return nil, fuse.EIO
			}
			return &Dir{dir: sub}, nil
		}
		return &File{entry: e}, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	list, err := d.entries()
	if err != nil {
		return nil, fuse.EIO
	}
	out := make([]fuse.Dirent, 0, len(list))
	for i, e := range list {
		typ := fuse.DT_File
		if e.IsDir() {
			typ = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Inode: uint64(i) + 1, Name: e.FileName(), Type: typ})
	}
	return out, nil
}

// File implements fs.Node and fs.HandleReader over a fat.DirEntry,
// opening its fat.File lazily on first read.
type File struct {
	entry *fatfs.DirEntry

	mtx  sync.Mutex
	file *fatfs.File
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.entry.Len())
	a.Mtime = f.entry.Modified()
	return nil
}

func (f *File) open() (*fatfs.File, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.file != nil {
		return f.file, nil
	}
	ff, err := f.entry.ToFile()
	if err != nil {
		return nil, err
	}
	f.file = ff
	return ff, nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	ff, err := f.open()
	if err != nil {
		return fuse.EIO
	}
	size := req.Size
	if int64(req.Offset) >= ff.Len() {
		resp.Data = []byte{}
		return nil
	}
	if int64(req.Offset)+int64(size) > ff.Len() {
		size = int(ff.Len() - req.Offset)
	}
	buf := make([]byte, size)
	if _, err := ff.Seek(req.Offset, io.SeekStart); err != nil {
		return fuse.EIO
	}
	n, err := ff.Read(buf)
	if err != nil && n == 0 {
		return fuse.EIO
	}
	resp.Data = buf[:n]
	return nil
}
