package view

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/session"
)

const (
	genericLoginFailure   = "Login failed. Please try again."
	sessionExpiredMessage = "Session expired. Please sign in again."
)

// LoginGateway is the slice of the API gateway the controller needs.
type LoginGateway interface {
	Login(ctx context.Context, username, password string) (*gateway.LoginResult, error)
}

// ProfileFetcher loads the dependent profile data shown on the authenticated
// view. Implementations typically go through the gateway's authenticated
// request pipeline, so a rejected token surfaces as gateway.ErrSessionExpired.
type ProfileFetcher func(ctx context.Context) (map[string]any, error)

// Controller is the presentation state machine. It holds the current state
// and its associated data, and exposes SubmitCredentials and Logout as the
// only mutation entry points; a presentation layer binds UI events to these.
//
// The controller is written for the single-goroutine, event-driven model:
// all methods are expected to be called from one goroutine, matching the
// one-logical-thread UI it drives.
type Controller struct {
	state   State
	user    session.UserRecord
	profile map[string]any
	message string

	sessions     *session.Manager
	gateway      LoginGateway
	renderer     Renderer
	fetchProfile ProfileFetcher
	loginDelay   time.Duration
	sleep        func(time.Duration)
	logger       zerolog.Logger
	bootstrapped bool
}

// Option defines a function type to modify the Controller instance.
type Option func(*Controller)

// WithProfileFetcher enables the dependent profile fetch after entering the
// authenticated view.
func WithProfileFetcher(fetch ProfileFetcher) Option {
	return func(c *Controller) {
		c.fetchProfile = fetch
	}
}

// WithLoginDelay inserts an artificial delay before the post-login view
// transition, for perceived-latency smoothing. The session write still
// completes before the transition renders.
func WithLoginDelay(delay time.Duration) Option {
	return func(c *Controller) {
		c.loginDelay = delay
	}
}

// WithSleepFunc sets the sleep function (primarily for testing).
func WithSleepFunc(sleep func(time.Duration)) Option {
	return func(c *Controller) {
		c.sleep = sleep
	}
}

// WithLogger sets the logger (a no-op logger is used by default).
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller wired to the session manager, gateway,
// and renderer. Optional behaviour comes in via options.
func NewController(sessions *session.Manager, loginGateway LoginGateway, renderer Renderer, options ...Option) (*Controller, error) {
	if sessions == nil {
		return nil, errors.New("[NewController] session manager is required")
	}
	if loginGateway == nil {
		return nil, errors.New("[NewController] gateway is required")
	}
	if renderer == nil {
		return nil, errors.New("[NewController] renderer is required")
	}

	controller := &Controller{
		state:    StateLoggedOut,
		sessions: sessions,
		gateway:  loginGateway,
		renderer: renderer,
		sleep:    time.Sleep,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(controller)
	}
	return controller, nil
}

// State returns the currently active view state.
func (c *Controller) State() State {
	return c.state
}

// Bootstrap selects and renders the initial view from stored session state.
// It runs exactly once per process lifetime, at startup; the check is never
// re-evaluated on a timer.
//
// A stored-but-unreadable user record is treated the same as "no session":
// the session is cleared and the login view shown, with nothing surfaced to
// the user.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if c.bootstrapped {
		return errors.Wrap(ErrInvalidTransition, "bootstrap already ran")
	}
	c.bootstrapped = true

	if !c.sessions.IsAuthenticated() {
		c.enter(StateLoggedOut, "")
		return nil
	}

	user, err := c.sessions.CurrentUser()
	if err != nil {
		c.logger.Warn().Err(err).Msg("stored session unreadable, forcing logout")
		if clearErr := c.sessions.ClearSession(); clearErr != nil {
			return errors.Wrap(clearErr, "[Bootstrap] failed to clear corrupt session")
		}
		c.enter(StateLoggedOut, "")
		return nil
	}

	c.user = user
	c.enter(StateLoggedIn, "")

	if c.fetchProfile != nil {
		return c.LoadProfile(ctx)
	}
	return nil
}

// SubmitCredentials runs the login flow: LoggedOut -> LoggingIn -> LoggedIn
// on success, back to LoggedOut with the reason inline on failure. The
// session write always completes before the authenticated view renders.
//
// While a login is in flight further submits are rejected with ErrBusy.
func (c *Controller) SubmitCredentials(ctx context.Context, username, password string) error {
	switch c.state {
	case StateLoggingIn, StateProfileLoading:
		return ErrBusy
	case StateLoggedIn:
		return errors.Wrap(ErrInvalidTransition, "already authenticated")
	}

	c.enter(StateLoggingIn, "")

	result, err := c.gateway.Login(ctx, username, password)
	if err != nil {
		var authErr *gateway.AuthenticationError
		if errors.As(err, &authErr) {
			// Server rejected the credentials: recovered locally, reason
			// shown inline, submit re-enabled. No session was written.
			c.enter(StateLoggedOut, authErr.Reason)
			return nil
		}
		c.logger.Warn().Err(err).Msg("login exchange failed")
		c.enter(StateLoggedOut, genericLoginFailure)
		return nil
	}

	// Persist before the transition: a view change must never be visible
	// before its session write lands.
	if err := c.sessions.SetSession(result.AccessToken, result.RefreshToken, result.User); err != nil {
		c.enter(StateLoggedOut, genericLoginFailure)
		return errors.Wrap(err, "[SubmitCredentials] failed to persist session")
	}

	if c.loginDelay > 0 {
		c.sleep(c.loginDelay)
	}

	c.user = result.User
	c.enter(StateLoggedIn, "")

	if c.fetchProfile != nil {
		return c.LoadProfile(ctx)
	}
	return nil
}

// LoadProfile runs the dependent profile fetch: LoggedIn -> ProfileLoading,
// then back to LoggedIn with data on success. A rejected token forces the
// full logout path; any other failure lands in the Error state with the
// logout action still available.
func (c *Controller) LoadProfile(ctx context.Context) error {
	if c.fetchProfile == nil {
		return nil
	}
	if c.state != StateLoggedIn {
		return errors.Wrap(ErrInvalidTransition, "profile fetch requires the authenticated view")
	}

	c.enter(StateProfileLoading, "")

	profile, err := c.fetchProfile(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			c.forceLogout()
			return nil
		}
		c.logger.Warn().Err(err).Msg("profile fetch failed")
		c.enter(StateError, "Could not load your profile. Please try again or sign out.")
		return nil
	}

	c.profile = profile
	c.enter(StateLoggedIn, "")
	return nil
}

// Logout clears the session and renders the login view. It is valid from any
// state and is the designated way out of the Error state.
func (c *Controller) Logout() error {
	err := c.sessions.ClearSession()
	c.user = nil
	c.profile = nil
	c.enter(StateLoggedOut, "")
	return errors.Wrap(err, "[Logout] failed to clear session")
}

// forceLogout handles a mid-session token rejection: the gateway has already
// cleared the stored session, so only the view needs to catch up.
func (c *Controller) forceLogout() {
	c.user = nil
	c.profile = nil
	c.enter(StateLoggedOut, sessionExpiredMessage)
}

func (c *Controller) enter(state State, message string) {
	c.state = state
	c.message = message
	if state == StateLoggedOut {
		c.user = nil
		c.profile = nil
	}
	c.renderer.Render(Snapshot{
		State:   c.state,
		User:    c.user,
		Profile: c.profile,
		Message: c.message,
	})
}
