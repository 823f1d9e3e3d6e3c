package session

import "errors"

var (
	// ErrCorruptSession is returned when stored session data is present but
	// cannot be decoded. Callers should treat it the same as "no session"
	// and force a logout rather than surfacing it to the user.
	ErrCorruptSession = errors.New("corrupt session data")
)
