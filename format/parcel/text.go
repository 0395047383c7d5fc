package parcel

import (
	"github.com/mr-tron/base58/base58"

	"github.com/eluv-io/errors-go"
)

// String returns the parcel's data in base58 encoding.
func (p *Parcel) String() string {
	return base58.Encode(p.buf)
}

// Parse creates a parcel from its base58 text form as returned by String.
func Parse(s string) (*Parcel, error) {
	if s == "" {
		return New(), nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, errors.E("parcel.Parse", errors.K.Invalid, err, "string", s)
	}
	return FromBytes(b), nil
}

// MarshalText implements encoding.TextMarshaler.
func (p *Parcel) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Parcel) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}
