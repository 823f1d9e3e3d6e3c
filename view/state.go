package view

// State identifies which view is active. Exactly one state is active at a
// time. Transitions are driven solely by session presence and gateway
// outcomes, never by UI timers.
type State string

const (
	// StateLoggedOut shows the login form
	StateLoggedOut State = "logged_out"
	// StateLoggingIn is transient: the submit affordance is disabled and a
	// progress indicator shown while the login exchange is in flight
	StateLoggingIn State = "logging_in"
	// StateLoggedIn shows the authenticated view
	StateLoggedIn State = "logged_in"
	// StateProfileLoading is a transient sub-state of logged in while a
	// dependent profile fetch is in flight
	StateProfileLoading State = "profile_loading"
	// StateError is terminal for the attempt; logout is always available
	// as the way back to the login form
	StateError State = "error"
)
