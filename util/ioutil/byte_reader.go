package ioutil

import "io"

var _ io.ByteReader = (*ByteReader)(nil)

// ByteReader is an io.ByteReader that reads single bytes from the wrapped reader
// without buffering, so that the wrapped reader can be used for further reads
// afterwards.
type ByteReader struct {
	io.Reader
	buf [1]byte
}

// NewByteReader returns r if it already is an io.ByteReader, otherwise it wraps r
// in a ByteReader.
func NewByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &ByteReader{Reader: r}
}

func (b *ByteReader) ReadByte() (byte, error) {
	_, err := io.ReadFull(b.Reader, b.buf[:])
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return b.buf[0], err
}
