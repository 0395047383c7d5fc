package parcel

import (
	"encoding/binary"
	"io"

	"github.com/eluv-io/errors-go"
)

// ByteOrder is the byte order of all fixed-width integers written to a parcel.
var ByteOrder = binary.LittleEndian

// Parcel is an in-memory byte buffer with a single read/write position. Writes
// overwrite the bytes at the current position and grow the buffer if needed,
// reads consume bytes from the current position. The position can be queried and
// moved explicitly, which allows a writer to reserve a slot and fill it in later.
//
// A Parcel is not safe for concurrent use.
type Parcel struct {
	buf []byte
	pos int
}

// New creates an empty parcel. The optional capacity pre-allocates the
// underlying buffer.
func New(capacity ...int) *Parcel {
	c := 0
	if len(capacity) > 0 && capacity[0] > 0 {
		c = capacity[0]
	}
	return &Parcel{buf: make([]byte, 0, c)}
}

// FromBytes creates a parcel for reading the given data. The position is set to
// the beginning of the data. The parcel takes ownership of the slice.
func FromBytes(b []byte) *Parcel {
	return &Parcel{buf: b}
}

// Bytes returns the parcel's data, regardless of the current position. The
// returned slice aliases the parcel's buffer until the next write.
func (p *Parcel) Bytes() []byte {
	return p.buf
}

// Len returns the total number of bytes in the parcel.
func (p *Parcel) Len() int {
	return len(p.buf)
}

// Position returns the current read/write position.
func (p *Parcel) Position() int {
	return p.pos
}

// SetPosition moves the read/write position. Valid positions range from 0 to
// Len() inclusive.
func (p *Parcel) SetPosition(pos int) error {
	if pos < 0 || pos > len(p.buf) {
		return errors.E("parcel.SetPosition", errors.K.Invalid,
			"reason", "position out of bounds",
			"position", pos,
			"len", len(p.buf))
	}
	p.pos = pos
	return nil
}

// Remaining returns the number of bytes between the current position and the
// end of the data.
func (p *Parcel) Remaining() int {
	return len(p.buf) - p.pos
}

// Reset empties the parcel, retaining the allocated buffer.
func (p *Parcel) Reset() {
	p.buf = p.buf[:0]
	p.pos = 0
}

// ensure makes room for n bytes at the current position and returns the slice
// to write into.
func (p *Parcel) ensure(n int) []byte {
	end := p.pos + n
	if end > len(p.buf) {
		if end > cap(p.buf) {
			c := 2*cap(p.buf) + n
			nb := make([]byte, len(p.buf), c)
			copy(nb, p.buf)
			p.buf = nb
		}
		p.buf = p.buf[:end]
	}
	return p.buf[p.pos:end]
}

func (p *Parcel) write(b []byte) {
	copy(p.ensure(len(b)), b)
	p.pos += len(b)
}

func (p *Parcel) read(op string, n int) ([]byte, error) {
	if n < 0 || n > p.Remaining() {
		return nil, errors.E(op, errors.K.Invalid, io.ErrUnexpectedEOF,
			"reason", "read beyond end of parcel",
			"position", p.pos,
			"need", n,
			"remaining", p.Remaining())
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

// Write implements io.Writer: it writes the given bytes unaligned at the current
// position.
func (p *Parcel) Write(b []byte) (int, error) {
	p.write(b)
	return len(b), nil
}

// Read implements io.Reader.
func (p *Parcel) Read(b []byte) (int, error) {
	if p.Remaining() == 0 {
		if len(b) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(b, p.buf[p.pos:])
	p.pos += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (p *Parcel) ReadByte() (byte, error) {
	b, err := p.read("parcel.ReadByte", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// pad returns the number of padding bytes needed to align n to 4 bytes.
func pad(n int) int {
	return (4 - n%4) % 4
}
