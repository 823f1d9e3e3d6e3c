package view

import "github.com/jrsteele09/go-auth-client/session"

// Snapshot is the complete input to a render: current state plus its
// associated data. Rendering is a pure function of the snapshot, and every
// render replaces the whole view.
type Snapshot struct {
	State   State
	User    session.UserRecord // Cached user record, when authenticated
	Profile map[string]any     // Dependent profile data, when fetched
	Message string             // Inline message (login failure reason, expiry notice)
}

// Renderer presents a Snapshot. The presentation layer implements this
// without the controller knowing anything about its mechanics.
type Renderer interface {
	Render(snapshot Snapshot)
}
