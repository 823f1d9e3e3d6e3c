package view_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/session/storefakes"
	"github.com/jrsteele09/go-auth-client/view"
)

type fakeRenderer struct {
	snapshots []view.Snapshot
	onRender  func(view.Snapshot)
}

func (r *fakeRenderer) Render(snapshot view.Snapshot) {
	r.snapshots = append(r.snapshots, snapshot)
	if r.onRender != nil {
		r.onRender(snapshot)
	}
}

func (r *fakeRenderer) states() []view.State {
	states := make([]view.State, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		states = append(states, s.State)
	}
	return states
}

func (r *fakeRenderer) last() view.Snapshot {
	return r.snapshots[len(r.snapshots)-1]
}

type fakeGateway struct {
	loginFn func(ctx context.Context, username, password string) (*gateway.LoginResult, error)
}

func (g *fakeGateway) Login(ctx context.Context, username, password string) (*gateway.LoginResult, error) {
	return g.loginFn(ctx, username, password)
}

func successfulLogin(t *testing.T) *fakeGateway {
	t.Helper()
	return &fakeGateway{
		loginFn: func(_ context.Context, username, password string) (*gateway.LoginResult, error) {
			if username == "admin" && password == "password" {
				return &gateway.LoginResult{
					AccessToken:  "tok1",
					RefreshToken: "tok2",
					User:         session.UserRecord{"username": "admin"},
				}, nil
			}
			return nil, &gateway.AuthenticationError{StatusCode: http.StatusUnauthorized, Reason: "Invalid credentials"}
		},
	}
}

type testFixture struct {
	controller *view.Controller
	sessions   *session.Manager
	store      *storefakes.FakeStore
	renderer   *fakeRenderer
}

func setupTestFixture(t *testing.T, gw view.LoginGateway, options ...view.Option) *testFixture {
	t.Helper()

	f := &testFixture{
		store:    storefakes.NewFakeStore(),
		renderer: &fakeRenderer{},
	}

	sessions, err := session.NewManager(f.store)
	require.NoError(t, err)
	f.sessions = sessions

	controller, err := view.NewController(sessions, gw, f.renderer, options...)
	require.NoError(t, err)
	f.controller = controller

	return f
}

func TestNewController(t *testing.T) {
	sessions, err := session.NewManager(storefakes.NewFakeStore())
	require.NoError(t, err)

	t.Run("requires session manager", func(t *testing.T) {
		_, err := view.NewController(nil, &fakeGateway{}, &fakeRenderer{})
		require.Error(t, err)
	})

	t.Run("requires gateway", func(t *testing.T) {
		_, err := view.NewController(sessions, nil, &fakeRenderer{})
		require.Error(t, err)
	})

	t.Run("requires renderer", func(t *testing.T) {
		_, err := view.NewController(sessions, &fakeGateway{}, nil)
		require.Error(t, err)
	})
}

func TestController_Bootstrap(t *testing.T) {
	t.Run("fresh storage shows the login view", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))

		require.NoError(t, f.controller.Bootstrap(context.Background()))
		require.Equal(t, view.StateLoggedOut, f.controller.State())
		require.Equal(t, []view.State{view.StateLoggedOut}, f.renderer.states())
	})

	t.Run("stored session shows the authenticated view with the cached user", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.sessions.SetSession("tok1", "tok2", session.UserRecord{"username": "admin"}))

		require.NoError(t, f.controller.Bootstrap(context.Background()))
		require.Equal(t, view.StateLoggedIn, f.controller.State())
		require.Equal(t, session.UserRecord{"username": "admin"}, f.renderer.last().User)
	})

	t.Run("runs exactly once", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))

		require.NoError(t, f.controller.Bootstrap(context.Background()))
		err := f.controller.Bootstrap(context.Background())
		require.ErrorIs(t, err, view.ErrInvalidTransition)
	})

	t.Run("corrupt stored user silently falls through to the login view", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.store.Set(session.KeyAccessToken, "tok1"))
		require.NoError(t, f.store.Set(session.KeyUser, "{not json"))

		require.NoError(t, f.controller.Bootstrap(context.Background()))
		require.Equal(t, view.StateLoggedOut, f.controller.State())
		require.Empty(t, f.renderer.last().Message) // nothing surfaced to the user
		require.False(t, f.sessions.IsAuthenticated())
	})
}

func TestController_SubmitCredentials(t *testing.T) {
	t.Run("success walks LoggedOut -> LoggingIn -> LoggedIn", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.Equal(t, []view.State{view.StateLoggedOut, view.StateLoggingIn, view.StateLoggedIn}, f.renderer.states())

		token, ok := f.sessions.AccessToken()
		require.True(t, ok)
		require.Equal(t, "tok1", token)
		require.Equal(t, session.UserRecord{"username": "admin"}, f.renderer.last().User)
	})

	t.Run("session write lands before the authenticated view renders", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		authenticatedAtRender := map[view.State]bool{}
		f.renderer.onRender = func(s view.Snapshot) {
			authenticatedAtRender[s.State] = f.sessions.IsAuthenticated()
		}
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.False(t, authenticatedAtRender[view.StateLoggingIn])
		require.True(t, authenticatedAtRender[view.StateLoggedIn])
	})

	t.Run("rejected credentials return to LoggedOut with the reason inline", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "wrong"))
		require.Equal(t, view.StateLoggedOut, f.controller.State())
		require.Contains(t, f.renderer.last().Message, "Invalid credentials")
		require.False(t, f.sessions.IsAuthenticated())
		require.Empty(t, f.store.Keys()) // no partial session
	})

	t.Run("transport failure surfaces a generic message", func(t *testing.T) {
		f := setupTestFixture(t, &fakeGateway{
			loginFn: func(context.Context, string, string) (*gateway.LoginResult, error) {
				return nil, errors.New("connection refused")
			},
		})
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.Equal(t, view.StateLoggedOut, f.controller.State())
		require.NotEmpty(t, f.renderer.last().Message)
		require.NotContains(t, f.renderer.last().Message, "connection refused")
	})

	t.Run("submit while a login is in flight is rejected", func(t *testing.T) {
		var controller *view.Controller
		var nestedErr error
		f := setupTestFixture(t, &fakeGateway{
			loginFn: func(ctx context.Context, _, _ string) (*gateway.LoginResult, error) {
				nestedErr = controller.SubmitCredentials(ctx, "admin", "password")
				return nil, errors.New("slow exchange")
			},
		})
		controller = f.controller
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.ErrorIs(t, nestedErr, view.ErrBusy)
	})

	t.Run("submit while authenticated is rejected", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.controller.Bootstrap(context.Background()))
		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))

		err := f.controller.SubmitCredentials(context.Background(), "admin", "password")
		require.ErrorIs(t, err, view.ErrInvalidTransition)
	})

	t.Run("persist failure is fatal and never shows the authenticated view", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.controller.Bootstrap(context.Background()))
		f.store.FailSetKeys[session.KeyAccessToken] = true

		err := f.controller.SubmitCredentials(context.Background(), "admin", "password")
		require.Error(t, err)
		require.Equal(t, view.StateLoggedOut, f.controller.State())
		require.NotContains(t, f.renderer.states(), view.StateLoggedIn)
		require.False(t, f.sessions.IsAuthenticated())
	})

	t.Run("smoothing delay runs between persist and transition", func(t *testing.T) {
		var slept []time.Duration
		f := setupTestFixture(t, successfulLogin(t),
			view.WithLoginDelay(500*time.Millisecond),
			view.WithSleepFunc(func(d time.Duration) { slept = append(slept, d) }),
		)
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.Equal(t, []time.Duration{500 * time.Millisecond}, slept)
		require.Equal(t, view.StateLoggedIn, f.controller.State())
	})
}

func TestController_LoadProfile(t *testing.T) {
	profileFetcher := func(profile map[string]any, err error) view.ProfileFetcher {
		return func(context.Context) (map[string]any, error) {
			return profile, err
		}
	}

	t.Run("success shows the profile on the authenticated view", func(t *testing.T) {
		profile := map[string]any{"full_name_en": "Ahmed Hassan", "department": "IT"}
		f := setupTestFixture(t, successfulLogin(t), view.WithProfileFetcher(profileFetcher(profile, nil)))
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.Equal(t, []view.State{
			view.StateLoggedOut,
			view.StateLoggingIn,
			view.StateLoggedIn,
			view.StateProfileLoading,
			view.StateLoggedIn,
		}, f.renderer.states())
		require.Equal(t, profile, f.renderer.last().Profile)
	})

	t.Run("rejected token forces the full logout path", func(t *testing.T) {
		var f *testFixture
		fetch := func(context.Context) (map[string]any, error) {
			// The real gateway clears the session before returning this.
			require.NoError(t, f.sessions.ClearSession())
			return nil, gateway.ErrSessionExpired
		}
		f = setupTestFixture(t, successfulLogin(t), view.WithProfileFetcher(fetch))
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.Equal(t, view.StateLoggedOut, f.controller.State())
		require.Contains(t, f.renderer.last().Message, "expired")
		require.False(t, f.sessions.IsAuthenticated())
	})

	t.Run("other failures land in the error state", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t),
			view.WithProfileFetcher(profileFetcher(nil, errors.New("boom"))))
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))
		require.Equal(t, view.StateError, f.controller.State())
		require.NotEmpty(t, f.renderer.last().Message)

		t.Run("logout leads back to the login view", func(t *testing.T) {
			require.NoError(t, f.controller.Logout())
			require.Equal(t, view.StateLoggedOut, f.controller.State())
		})
	})

	t.Run("requires the authenticated view", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t),
			view.WithProfileFetcher(profileFetcher(map[string]any{}, nil)))
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		err := f.controller.LoadProfile(context.Background())
		require.ErrorIs(t, err, view.ErrInvalidTransition)
	})
}

func TestController_Logout(t *testing.T) {
	t.Run("clears the session and shows the login view", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.controller.Bootstrap(context.Background()))
		require.NoError(t, f.controller.SubmitCredentials(context.Background(), "admin", "password"))

		require.NoError(t, f.controller.Logout())
		require.Equal(t, view.StateLoggedOut, f.controller.State())
		require.False(t, f.sessions.IsAuthenticated())
		require.Nil(t, f.renderer.last().User)
	})

	t.Run("is valid with no session at all", func(t *testing.T) {
		f := setupTestFixture(t, successfulLogin(t))
		require.NoError(t, f.controller.Bootstrap(context.Background()))

		require.NoError(t, f.controller.Logout())
		require.NoError(t, f.controller.Logout())
		require.Equal(t, view.StateLoggedOut, f.controller.State())
	})
}
