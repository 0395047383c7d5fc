/*
Package envelope frames versioned records so that readers and writers built
against different revisions of a record's layout can still exchange them.

Each record is preceded by an 8-byte header:

	offset 0: version         4 bytes, signed, little-endian with parcel.Parcel
	offset 4: payload length  4 bytes, signed, excludes the header itself
	offset 8: payload         payload length bytes

A writer opens a session with BeginWrite, writes its fields directly to the
cursor and calls Complete, which backpatches the payload length into the slot
reserved by BeginWrite. A reader opens a session with BeginRead, reads the
fields it knows about (gated by the session's version) and calls Complete,
which moves the cursor to the end of the payload regardless of how much was
actually read:

	s, err := envelope.BeginRead(p)
	if err != nil {
		return err
	}
	c.Name, err = p.ReadString()
	...
	if s.AtLeast(2) {
		c.Email, err = p.ReadString()
		...
	}
	return s.Complete()

Sessions may be nested: a payload can contain further envelopes, as long as
inner sessions are completed before their parents. Use Track to have that
order verified.
*/
package envelope
