package envelope

import (
	"math"

	elog "github.com/eluv-io/log-go"

	"github.com/eluv-io/errors-go"
)

var log = elog.Get("/eluvio/format/envelope")

// HeaderSize is the size in bytes of an envelope header: version and payload
// length.
const HeaderSize = 8

// ReasonMalformed is the "reason" field of errors returned for envelope headers
// that cannot be valid.
const ReasonMalformed = "malformed envelope"

// Cursor is a byte buffer with a movable read/write position. parcel.Parcel is the
// canonical implementation.
type Cursor interface {
	WriteInt32(v int32) error
	ReadInt32() (int32, error)
	Position() int
	SetPosition(pos int) error
}

// Mode is the direction of a session.
type Mode int

const (
	Writing Mode = iota
	Reading
)

func (m Mode) String() string {
	switch m {
	case Writing:
		return "writing"
	case Reading:
		return "reading"
	}
	return "unknown"
}

// Session is one envelope being written or read. It is created by BeginWrite or
// BeginRead and must be completed exactly once with Complete, after the last
// field of the record has been written or read and before the cursor is used for
// anything else.
type Session struct {
	cursor        Cursor
	tracker       *TrackedCursor
	mode          Mode
	version       int32
	payloadLength int // -1 for write sessions until completed
	payloadStart  int
	lengthPos     int // write sessions only
	closed        bool
}

// BeginWrite starts a write session with the default configuration. See
// Config.BeginWrite.
func BeginWrite(c Cursor, version int32) (*Session, error) {
	return defaultConfig.BeginWrite(c, version)
}

// BeginRead starts a read session with the default configuration. See
// Config.BeginRead.
func BeginRead(c Cursor) (*Session, error) {
	return defaultConfig.BeginRead(c)
}

// BeginWrite writes the envelope header for the given version at the cursor's
// position, with a placeholder for the payload length, and returns the write
// session. The cursor is left at the start of the payload. The config's limits
// apply to reading only: any payload that fits the length field can be written.
func (cfg Config) BeginWrite(c Cursor, version int32) (*Session, error) {
	e := errors.Template("envelope.BeginWrite", errors.K.Invalid.Default(), "version", version)

	err := c.WriteInt32(version)
	if err != nil {
		return nil, e(err, "reason", "failed to write version")
	}
	lengthPos := c.Position()
	err = c.WriteInt32(0)
	if err != nil {
		return nil, e(err, "reason", "failed to write length placeholder")
	}

	s := &Session{
		cursor:        c,
		mode:          Writing,
		version:       version,
		payloadLength: -1,
		payloadStart:  c.Position(),
		lengthPos:     lengthPos,
	}
	s.track()
	if log.IsTrace() {
		log.Trace("begin write", "version", version, "payload_start", s.payloadStart)
	}
	return s, nil
}

// BeginRead reads an envelope header at the cursor's position and returns the read
// session. The cursor is left at the start of the payload.
//
// Unless the config is trusted, the decoded payload length is validated: it must
// not exceed MaxPayloadLength, nor the bytes remaining in the cursor if the cursor
// reports its length through a Len() int method. A negative length is always
// rejected. Invalid headers yield an errors.K.Invalid error with reason
// ReasonMalformed, and the cursor is moved back to the start of the header.
func (cfg Config) BeginRead(c Cursor) (*Session, error) {
	e := errors.Template("envelope.BeginRead", errors.K.Invalid.Default())

	start := c.Position()
	version, err := c.ReadInt32()
	if err != nil {
		return nil, e(err, "reason", "failed to read version")
	}
	length, err := c.ReadInt32()
	if err != nil {
		return nil, e(err, "reason", "failed to read payload length", "version", version)
	}
	payloadStart := c.Position()

	malformed := func(fields ...interface{}) (*Session, error) {
		fields = append([]interface{}{
			errors.K.Invalid,
			"reason", ReasonMalformed,
			"version", version,
			"payload_length", length,
			"position", start,
		}, fields...)
		if err := c.SetPosition(start); err != nil {
			log.Warn("failed to rewind cursor to header start", "position", start, "error", err)
			fields = append(fields, "rewind_error", err)
		}
		return nil, e(fields...)
	}

	if length < 0 {
		return malformed("detail", "negative payload length")
	}
	if !cfg.Trusted {
		if cfg.MaxPayloadLength > 0 && int(length) > cfg.MaxPayloadLength {
			return malformed("detail", "payload length exceeds limit", "limit", cfg.MaxPayloadLength)
		}
		if total, ok := cursorLen(c); ok && int(length) > total-payloadStart {
			return malformed("detail", "payload length exceeds remaining bytes", "remaining", total-payloadStart)
		}
	}

	s := &Session{
		cursor:        c,
		mode:          Reading,
		version:       version,
		payloadLength: int(length),
		payloadStart:  payloadStart,
	}
	s.track()
	if log.IsTrace() {
		log.Trace("begin read", "version", version, "payload_length", length, "payload_start", payloadStart)
	}
	return s, nil
}

// Version returns the version of the record: the one given to BeginWrite, or the
// one decoded by BeginRead.
func (s *Session) Version() int32 {
	return s.version
}

// AtLeast returns true if the session's version is greater or equal to the given
// version, i.e. if fields introduced in that version are present.
func (s *Session) AtLeast(version int32) bool {
	return s.version >= version
}

// Mode returns the session's direction.
func (s *Session) Mode() Mode {
	return s.mode
}

// PayloadLength returns the payload length in bytes. For write sessions, it is -1
// until the session is completed.
func (s *Session) PayloadLength() int {
	return s.payloadLength
}

// PayloadStart returns the cursor position of the first payload byte.
func (s *Session) PayloadStart() int {
	return s.payloadStart
}

// End returns the cursor position just past the payload, or -1 for write sessions
// that are not yet completed.
func (s *Session) End() int {
	if s.payloadLength < 0 {
		return -1
	}
	return s.payloadStart + s.payloadLength
}

// Closed returns true once Complete has been called.
func (s *Session) Closed() bool {
	return s.closed
}

// Complete finishes the session.
//
// For write sessions, the payload length is computed from the cursor's current
// position and written into the header's reserved slot. The cursor is then moved
// back to the end of the payload.
//
// For read sessions, the cursor is moved to the end of the payload, skipping any
// trailing bytes the caller did not read.
//
// Completing a session twice is an error. If Complete fails, the session stays
// open and the header is left untouched, so the call may be retried once the
// cause is fixed, e.g. after moving the cursor back past the payload.
func (s *Session) Complete() error {
	e := errors.Template("envelope.Complete", errors.K.Invalid.Default(), "mode", s.mode, "version", s.version)
	if s.closed {
		return e(errors.K.Invalid, "reason", "session already completed")
	}
	if s.tracker != nil {
		err := s.tracker.checkInnermost(s)
		if err != nil {
			return e(err)
		}
	}

	var err error
	if s.mode == Writing {
		err = s.completeWrite()
	} else {
		err = s.completeRead()
	}
	if err != nil {
		return err
	}

	s.closed = true
	if s.tracker != nil {
		s.tracker.pop()
	}
	return nil
}

func (s *Session) completeWrite() error {
	e := errors.Template("envelope.Complete", errors.K.Invalid.Default(), "mode", s.mode, "version", s.version)
	pos := s.cursor.Position()
	length := pos - s.payloadStart
	if length < 0 {
		return e(errors.K.Invalid,
			"reason", "cursor positioned before payload start",
			"position", pos,
			"payload_start", s.payloadStart)
	}
	if length > math.MaxInt32 {
		return e(errors.K.Invalid,
			"reason", "payload too large",
			"payload_length", length,
			"max", math.MaxInt32)
	}

	err := s.cursor.SetPosition(s.lengthPos)
	if err == nil {
		err = s.cursor.WriteInt32(int32(length))
	}
	if err == nil {
		err = s.cursor.SetPosition(pos)
	}
	if err != nil {
		// leave the cursor where the caller had it
		_ = s.cursor.SetPosition(pos)
		return e(err, "reason", "failed to write payload length")
	}
	s.payloadLength = length

	if log.IsTrace() {
		log.Trace("complete write", "version", s.version, "payload_length", length)
	}
	return nil
}

func (s *Session) completeRead() error {
	e := errors.Template("envelope.Complete", errors.K.Invalid.Default(), "mode", s.mode, "version", s.version)
	end := s.payloadStart + s.payloadLength
	pos := s.cursor.Position()
	if pos > end {
		log.Warn("payload over-read", "version", s.version, "position", pos, "end", end)
	} else if pos < end && log.IsDebug() {
		log.Debug("skipping unread payload bytes", "version", s.version, "skipped", end-pos)
	}

	err := s.cursor.SetPosition(end)
	if err != nil {
		return e(err, "reason", "failed to skip to end of payload", "end", end)
	}
	return nil
}

func (s *Session) track() {
	if t, ok := s.cursor.(*TrackedCursor); ok {
		t.push(s)
		s.tracker = t
	}
}

// cursorLen returns the total length of the cursor's data if the cursor reports it.
func cursorLen(c Cursor) (int, bool) {
	if t, ok := c.(*TrackedCursor); ok {
		c = t.Cursor
	}
	if l, ok := c.(interface{ Len() int }); ok {
		return l.Len(), true
	}
	return 0, false
}

// IsMalformed returns true if the given error was caused by an invalid envelope
// header, even if it has been wrapped by other errors since.
func IsMalformed(err error) bool {
	for err != nil {
		reason, ok := errors.GetField(err, "reason")
		if ok && reason == ReasonMalformed {
			return true
		}
		ex, ok := err.(*errors.Error)
		if !ok {
			return false
		}
		err = ex.Cause()
	}
	return false
}
