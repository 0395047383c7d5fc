package parcel

import (
	"github.com/eluv-io/errors-go"
)

// Parcelable is implemented by records that can write themselves to and read
// themselves from a parcel.
type Parcelable interface {
	WriteToParcel(p *Parcel) error
	ReadFromParcel(p *Parcel) error
}

// Marshal writes the given record to a new parcel and returns the parcel's bytes.
func Marshal(v Parcelable) ([]byte, error) {
	p := New(64)
	err := v.WriteToParcel(p)
	if err != nil {
		return nil, errors.E("parcel.Marshal", errors.K.Invalid, err)
	}
	return p.Bytes(), nil
}

// Unmarshal reads the given record from the data. It is an error if the record
// does not consume all data.
func Unmarshal(b []byte, v Parcelable) error {
	e := errors.Template("parcel.Unmarshal", errors.K.Invalid)
	p := FromBytes(b)
	err := v.ReadFromParcel(p)
	if err != nil {
		return e(err)
	}
	if p.Remaining() != 0 {
		return e("reason", "trailing data", "remaining", p.Remaining())
	}
	return nil
}
