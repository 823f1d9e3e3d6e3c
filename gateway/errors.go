package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired signals that the access token was rejected by the
	// remote service (or no token was stored at all). The gateway has
	// already cleared the session by the time callers see this error; the
	// only recovery is a fresh login.
	ErrSessionExpired = errors.New("session expired")

	// ErrMalformedResponse signals a response body that could not be decoded
	// into the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// AuthenticationError reports a login exchange rejected by the remote
// service. Reason carries the human readable explanation extracted from the
// response body when one was present.
type AuthenticationError struct {
	StatusCode int
	Reason     string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}
