package parcel

import (
	"math"
	"unicode/utf8"

	"github.com/eluv-io/errors-go"
	"github.com/eluv-io/utc-go"
	"github.com/multiformats/go-varint"
	uuid "github.com/satori/go.uuid"
)

// maxArrayLength limits the length of strings and byte arrays read from a parcel.
const maxArrayLength = 0x1000000

// zeroUTC is the seconds sentinel written for the zero timestamp.
const zeroUTC = math.MinInt64

// WriteInt32 writes a 4-byte signed integer.
func (p *Parcel) WriteInt32(v int32) error {
	ByteOrder.PutUint32(p.ensure(4), uint32(v))
	p.pos += 4
	return nil
}

// ReadInt32 reads a 4-byte signed integer.
func (p *Parcel) ReadInt32() (int32, error) {
	b, err := p.read("parcel.ReadInt32", 4)
	if err != nil {
		return 0, err
	}
	return int32(ByteOrder.Uint32(b)), nil
}

// WriteUint32 writes a 4-byte unsigned integer.
func (p *Parcel) WriteUint32(v uint32) error {
	ByteOrder.PutUint32(p.ensure(4), v)
	p.pos += 4
	return nil
}

// ReadUint32 reads a 4-byte unsigned integer.
func (p *Parcel) ReadUint32() (uint32, error) {
	b, err := p.read("parcel.ReadUint32", 4)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint32(b), nil
}

// WriteInt64 writes an 8-byte signed integer.
func (p *Parcel) WriteInt64(v int64) error {
	ByteOrder.PutUint64(p.ensure(8), uint64(v))
	p.pos += 8
	return nil
}

// ReadInt64 reads an 8-byte signed integer.
func (p *Parcel) ReadInt64() (int64, error) {
	b, err := p.read("parcel.ReadInt64", 8)
	if err != nil {
		return 0, err
	}
	return int64(ByteOrder.Uint64(b)), nil
}

// WriteFloat64 writes an IEEE 754 double.
func (p *Parcel) WriteFloat64(v float64) error {
	return p.WriteInt64(int64(math.Float64bits(v)))
}

// ReadFloat64 reads an IEEE 754 double.
func (p *Parcel) ReadFloat64() (float64, error) {
	v, err := p.ReadInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// WriteBool writes a boolean as a 4-byte integer 0 or 1.
func (p *Parcel) WriteBool(v bool) error {
	if v {
		return p.WriteInt32(1)
	}
	return p.WriteInt32(0)
}

// ReadBool reads a boolean. Any non-zero value is true.
func (p *Parcel) ReadBool() (bool, error) {
	v, err := p.ReadInt32()
	return v != 0, err
}

// WriteUvarint writes an unsigned varint. Varints are not padded.
func (p *Parcel) WriteUvarint(v uint64) error {
	p.write(varint.ToUvarint(v))
	return nil
}

// ReadUvarint reads an unsigned varint.
func (p *Parcel) ReadUvarint() (uint64, error) {
	v, n, err := varint.FromUvarint(p.buf[p.pos:])
	if err != nil {
		return 0, errors.E("parcel.ReadUvarint", errors.K.Invalid, err, "position", p.pos)
	}
	p.pos += n
	return v, nil
}

// WriteByteArray writes a byte array: its length as a 4-byte integer followed by
// the data, padded to a multiple of 4 bytes. A nil slice is written with length -1
// and read back as nil.
func (p *Parcel) WriteByteArray(b []byte) error {
	if b == nil {
		return p.WriteInt32(-1)
	}
	if len(b) > maxArrayLength {
		return errors.E("parcel.WriteByteArray", errors.K.Invalid,
			"reason", "array too large",
			"len", len(b),
			"max", maxArrayLength)
	}
	_ = p.WriteInt32(int32(len(b)))
	p.write(b)
	p.write(make([]byte, pad(len(b))))
	return nil
}

// ReadByteArray reads a byte array written by WriteByteArray. The returned slice is
// a copy.
func (p *Parcel) ReadByteArray() ([]byte, error) {
	b, err := p.readArray("parcel.ReadByteArray")
	if b == nil || err != nil {
		return nil, err
	}
	res := make([]byte, len(b))
	copy(res, b)
	return res, nil
}

func (p *Parcel) readArray(op string) ([]byte, error) {
	e := errors.Template(op, errors.K.Invalid)
	start := p.pos
	n, err := p.ReadInt32()
	if err != nil {
		return nil, e(err)
	}
	if n == -1 {
		return nil, nil
	}
	if n < 0 || n > maxArrayLength {
		p.pos = start
		return nil, e("reason", "invalid array length", "len", n)
	}
	b, err := p.read(op, int(n)+pad(int(n)))
	if err != nil {
		p.pos = start
		return nil, e(err)
	}
	return b[:n], nil
}

// WriteString writes a UTF-8 string in the byte array layout.
func (p *Parcel) WriteString(s string) error {
	if s == "" {
		return p.WriteByteArray([]byte{})
	}
	return p.WriteByteArray([]byte(s))
}

// ReadString reads a string written by WriteString. A nil array is read as the
// empty string.
func (p *Parcel) ReadString() (string, error) {
	b, err := p.readArray("parcel.ReadString")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.E("parcel.ReadString", errors.K.Invalid, "reason", "invalid utf-8")
	}
	return string(b), nil
}

// WriteUTC writes a timestamp as unix seconds in an 8-byte integer followed by
// the nanoseconds within the second in a 4-byte integer.
func (p *Parcel) WriteUTC(t utc.UTC) error {
	if t.IsZero() {
		_ = p.WriteInt64(zeroUTC)
		return p.WriteInt32(0)
	}
	_ = p.WriteInt64(t.Unix())
	return p.WriteInt32(int32(t.Nanosecond()))
}

// ReadUTC reads a timestamp written by WriteUTC.
func (p *Parcel) ReadUTC() (utc.UTC, error) {
	start := p.pos
	sec, err := p.ReadInt64()
	if err != nil {
		return utc.Zero, err
	}
	nsec, err := p.ReadInt32()
	if err != nil {
		p.pos = start
		return utc.Zero, err
	}
	if nsec < 0 || nsec >= 1e9 {
		p.pos = start
		return utc.Zero, errors.E("parcel.ReadUTC", errors.K.Invalid,
			"reason", "invalid nanoseconds",
			"nanoseconds", nsec)
	}
	if sec == zeroUTC {
		return utc.Zero, nil
	}
	return utc.Unix(sec, int64(nsec)), nil
}

// WriteUUID writes the 16 raw bytes of the given UUID.
func (p *Parcel) WriteUUID(u uuid.UUID) error {
	p.write(u.Bytes())
	return nil
}

// ReadUUID reads a UUID written by WriteUUID.
func (p *Parcel) ReadUUID() (uuid.UUID, error) {
	b, err := p.read("parcel.ReadUUID", uuid.Size)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(b)
}
