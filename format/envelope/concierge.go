package envelope

// CurrentVersion is the envelope version written by Prepare. Increment it whenever
// the layout of the records written with Prepare changes.
const CurrentVersion int32 = 1

// Prepare starts a write session for CurrentVersion.
func Prepare(c Cursor) (*Session, error) {
	return BeginWrite(c, CurrentVersion)
}

// Receive starts a read session. It is the counterpart of Prepare.
func Receive(c Cursor) (*Session, error) {
	return BeginRead(c)
}

// Write writes one envelope with the given version: it begins a write session,
// calls fn to write the payload and completes the session. The session is
// completed even if fn fails; the first error is returned.
func Write(c Cursor, version int32, fn func(s *Session) error) error {
	s, err := BeginWrite(c, version)
	if err != nil {
		return err
	}
	return run(s, fn)
}

// Read reads one envelope: it begins a read session, calls fn to read the payload
// and completes the session, which positions the cursor after the envelope even
// if fn failed or did not read the entire payload. The first error is returned.
func Read(c Cursor, fn func(s *Session) error) error {
	s, err := BeginRead(c)
	if err != nil {
		return err
	}
	return run(s, fn)
}

func run(s *Session, fn func(s *Session) error) error {
	err := fn(s)
	cerr := s.Complete()
	if err != nil {
		return err
	}
	return cerr
}
