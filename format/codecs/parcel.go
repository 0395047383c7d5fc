package codecs

import (
	"bytes"
	"io"

	"github.com/davecgh/go-spew/spew"
	elog "github.com/eluv-io/log-go"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"

	"github.com/eluv-io/envelope-go/format/parcel"
	"github.com/eluv-io/envelope-go/util/ioutil"
	"github.com/eluv-io/errors-go"
)

var log = elog.Get("/eluvio/format/codecs")

// ParcelMultiCodecPath is the multicodec path of parcel streams.
const ParcelMultiCodecPath = "/parcel"

// DefaultMaxFrameSize is the default limit for the size of a single parcel in a
// parcel stream: 64 MB.
const DefaultMaxFrameSize = 64 * 1024 * 1024

// ParcelCodec encodes parcel.Parcelable records to a stream and decodes them
// back. A stream consists of a multicodec header followed by one frame per
// record:
//
//	[multicodec header "/parcel"] ([uvarint size][parcel bytes])*
//
// The header is written before the first record of each encoder.
type ParcelCodec struct {
	header       []byte
	maxFrameSize uint64
}

var _ Codec = (*ParcelCodec)(nil)

// NewParcelCodec creates a parcel codec. The optional maxFrameSize limits the size
// of decoded frames, and defaults to DefaultMaxFrameSize.
func NewParcelCodec(maxFrameSize ...int) *ParcelCodec {
	max := uint64(DefaultMaxFrameSize)
	if len(maxFrameSize) > 0 && maxFrameSize[0] > 0 {
		max = uint64(maxFrameSize[0])
	}
	return &ParcelCodec{
		header:       multicodec.Header([]byte(ParcelMultiCodecPath)),
		maxFrameSize: max,
	}
}

// Encoder returns a ParcelEncoder writing to w.
func (c *ParcelCodec) Encoder(w io.Writer) Encoder {
	return c.ParcelEncoder(w)
}

// Decoder returns a ParcelDecoder reading from r.
func (c *ParcelCodec) Decoder(r io.Reader) Decoder {
	return c.ParcelDecoder(r)
}

// ParcelEncoder returns an encoder writing to w.
func (c *ParcelCodec) ParcelEncoder(w io.Writer) *ParcelEncoder {
	return &ParcelEncoder{
		writer: w,
		header: c.header,
		parcel: parcel.New(),
	}
}

// ParcelDecoder returns a decoder reading from r. The decoder reads no more bytes
// from r than the frames it decodes.
func (c *ParcelCodec) ParcelDecoder(r io.Reader) *ParcelDecoder {
	return &ParcelDecoder{
		reader:       r,
		byteReader:   ioutil.NewByteReader(r),
		header:       c.header,
		maxFrameSize: c.maxFrameSize,
	}
}

////////////////////////////////////////////////////////////////////////////////

// ParcelEncoder writes parcel.Parcelable records as frames of a parcel stream.
type ParcelEncoder struct {
	writer        io.Writer
	header        []byte
	headerWritten bool
	parcel        *parcel.Parcel
}

func (e *ParcelEncoder) writeHeader() error {
	if !e.headerWritten {
		_, err := e.writer.Write(e.header)
		if err != nil {
			return errors.E("ParcelEncoder.writeHeader", errors.K.IO, err)
		}
		e.headerWritten = true
	}
	return nil
}

// Encode writes the given object, which must implement parcel.Parcelable.
func (e *ParcelEncoder) Encode(obj interface{}) error {
	ee := errors.Template("ParcelEncoder.Encode", errors.K.Invalid)

	pa, ok := obj.(parcel.Parcelable)
	if !ok {
		return ee("reason", "object is not parcelable", "object_dump", spew.Sdump(obj))
	}

	e.parcel.Reset()
	err := pa.WriteToParcel(e.parcel)
	if err != nil {
		return ee(err)
	}

	err = e.writeHeader()
	if err != nil {
		return err
	}
	_, err = e.writer.Write(varint.ToUvarint(uint64(e.parcel.Len())))
	if err == nil {
		_, err = e.writer.Write(e.parcel.Bytes())
	}
	if err != nil {
		return ee(errors.K.IO, err)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// ParcelDecoder reads records from a parcel stream. At the end of the stream,
// Decode and DecodeVersioned return io.EOF.
type ParcelDecoder struct {
	reader       io.Reader
	byteReader   io.ByteReader
	header       []byte
	headerRead   bool
	maxFrameSize uint64
}

func (d *ParcelDecoder) readHeader() error {
	if !d.headerRead {
		hdr, err := multicodec.ReadHeader(d.reader)
		if err == io.EOF {
			return err
		}
		if err != nil {
			return errors.E("ParcelDecoder.readHeader", errors.K.Invalid, err, "reason", "invalid header")
		}
		if !bytes.Equal(hdr, d.header) {
			return errors.E("ParcelDecoder.readHeader", errors.K.Invalid,
				"reason", "invalid header",
				"expected", string(multicodec.HeaderPath(d.header)),
				"actual", string(multicodec.HeaderPath(hdr)))
		}
		d.headerRead = true
	}
	return nil
}

func (d *ParcelDecoder) readFrame() (*parcel.Parcel, error) {
	e := errors.Template("ParcelDecoder.readFrame", errors.K.Invalid)

	err := d.readHeader()
	if err != nil {
		return nil, err
	}

	size, err := varint.ReadUvarint(d.byteReader)
	if err == io.EOF {
		return nil, err
	}
	if err != nil {
		return nil, e(err, "reason", "invalid frame size")
	}
	if size > d.maxFrameSize {
		return nil, e("reason", "frame too large", "size", size, "max", d.maxFrameSize)
	}

	buf := make([]byte, size)
	_, err = io.ReadFull(d.reader, buf)
	if err != nil {
		return nil, e(errors.K.IO, err, "reason", "truncated frame", "size", size)
	}
	if log.IsTrace() {
		log.Trace("read frame", "size", size)
	}
	return parcel.FromBytes(buf), nil
}

// Decode reads the next record into the given object, which must implement
// parcel.Parcelable.
func (d *ParcelDecoder) Decode(obj interface{}) error {
	pa, ok := obj.(parcel.Parcelable)
	if !ok {
		return errors.E("ParcelDecoder.Decode", errors.K.Invalid,
			"reason", "object is not parcelable",
			"object_dump", spew.Sdump(obj))
	}
	p, err := d.readFrame()
	if err != nil {
		return err
	}
	return decodeFrame(p, pa)
}

// DecodeVersioned reads the next record. The envelope version at the start of the
// record is passed to the selector, which returns the object to decode the record
// into.
func (d *ParcelDecoder) DecodeVersioned(selector func(version int32) parcel.Parcelable) (obj parcel.Parcelable, version int32, err error) {
	e := errors.Template("ParcelDecoder.DecodeVersioned", errors.K.Invalid)

	p, err := d.readFrame()
	if err != nil {
		return nil, 0, err
	}
	version, err = p.ReadInt32()
	if err != nil {
		return nil, 0, e(err, "reason", "failed to read version")
	}
	_ = p.SetPosition(0)

	obj = selector(version)
	if obj == nil {
		return nil, version, e("reason", "unsupported version", "version", version)
	}
	err = decodeFrame(p, obj)
	if err != nil {
		return nil, version, err
	}
	return obj, version, nil
}

func decodeFrame(p *parcel.Parcel, obj parcel.Parcelable) error {
	e := errors.Template("ParcelDecoder.Decode", errors.K.Invalid)
	err := obj.ReadFromParcel(p)
	if err != nil {
		return e(err)
	}
	if p.Remaining() != 0 {
		return e("reason", "trailing frame data", "remaining", p.Remaining())
	}
	return nil
}
