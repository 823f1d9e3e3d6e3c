package view

import "errors"

var (
	// ErrBusy is returned when an action arrives while a login exchange is
	// already in flight. The submit affordance is meant to be disabled for
	// the duration, so racing logins are rejected rather than raced.
	ErrBusy = errors.New("action already in progress")

	// ErrInvalidTransition is returned when an action is not valid in the
	// current state (e.g. submitting credentials while already logged in).
	ErrInvalidTransition = errors.New("invalid view transition")
)
