package fat

import (
	"io"
)

// memStream is a growable in-memory Stream fake, the unit these tests use
// in place of a real volume.FileStream. Treats its absolute position as
// equal to its logical position, which is good enough for every
// directory-subsystem behavior that only cares about relative offsets
// and AbsPos's bookkeeping role.
type memStream struct {
	buf []byte
	pos int64
}

func newMemStream(data []byte) *memStream {
	return &memStream{buf: append([]byte(nil), data...)}
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:end], p)
	m.pos += int64(n)
	return n, nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = m.pos + offset
	case io.SeekEnd:
		newPos = int64(len(m.buf)) + offset
	}
	m.pos = newPos
	return m.pos, nil
}

func (m *memStream) Flush() error { return nil }

func (m *memStream) AbsPos() (int64, error) { return m.pos, nil }

func (m *memStream) Grow(n int64) error {
	if n <= 0 {
		return nil
	}
	m.buf = append(m.buf, make([]byte, n)...)
	return nil
}

func (m *memStream) Len() int64 { return int64(len(m.buf)) }
