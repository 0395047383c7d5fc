package parcel

import (
	"reflect"

	cd "github.com/ugorji/go/codec"

	"github.com/eluv-io/errors-go"
)

var cborHandle = makeCborHandle()

func makeCborHandle() *cd.CborHandle {
	handle := &cd.CborHandle{}
	handle.MapType = reflect.TypeOf(map[string]interface{}(nil))
	handle.Canonical = true
	return handle
}

// WriteValue encodes the given value as CBOR and writes it as a byte array. It is
// meant for fields whose structure is owned by someone else, e.g. free-form
// metadata.
func (p *Parcel) WriteValue(v interface{}) error {
	var b []byte
	err := cd.NewEncoderBytes(&b, cborHandle).Encode(v)
	if err != nil {
		return errors.E("parcel.WriteValue", errors.K.Invalid, err)
	}
	if b == nil {
		b = []byte{}
	}
	return p.WriteByteArray(b)
}

// ReadValue reads a CBOR value written by WriteValue and decodes it into v, which
// must be a pointer.
func (p *Parcel) ReadValue(v interface{}) error {
	e := errors.Template("parcel.ReadValue", errors.K.Invalid)
	b, err := p.readArray("parcel.ReadValue")
	if err != nil {
		return e(err)
	}
	if b == nil {
		return e("reason", "nil value")
	}
	err = cd.NewDecoderBytes(b, cborHandle).Decode(v)
	if err != nil {
		return e(err)
	}
	return nil
}
