package envelope

import (
	"github.com/gammazero/deque"

	"github.com/eluv-io/errors-go"
)

// TrackedCursor wraps a cursor and keeps track of the sessions opened on it.
// Completing a session that is not the innermost open one fails, instead of
// silently corrupting the enclosing envelopes.
type TrackedCursor struct {
	Cursor
	open deque.Deque
}

// Track wraps the given cursor for nesting checks. Sessions must be opened on the
// returned cursor in order to be tracked.
func Track(c Cursor) *TrackedCursor {
	return &TrackedCursor{Cursor: c}
}

// Depth returns the number of open sessions.
func (t *TrackedCursor) Depth() int {
	return t.open.Len()
}

func (t *TrackedCursor) push(s *Session) {
	t.open.PushBack(s)
}

func (t *TrackedCursor) checkInnermost(s *Session) error {
	if t.open.Len() == 0 || t.open.Back().(*Session) != s {
		return errors.E("envelope.TrackedCursor", errors.K.Invalid,
			"reason", "session completed out of order",
			"depth", t.open.Len())
	}
	return nil
}

func (t *TrackedCursor) pop() {
	t.open.PopBack()
}
