package session

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Manager wraps a credential Store with session level operations. It is the
// only component that touches the store directly; everything else goes
// through these methods, which are atomic from the caller's point of view.
type Manager struct {
	store Store
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	return &Manager{store: store}, nil
}

// SetSession persists the access token, refresh token, and user record.
// It must only be called after a successful login exchange. A storage
// failure is returned to the caller: an unpersisted session is
// indistinguishable from "not logged in" on the next load, so it cannot be
// silently swallowed.
//
// The access token is written last. Its presence is the authentication
// signal, so a failure part way through never leaves the store looking
// logged in with a half-written session behind it.
func (m *Manager) SetSession(accessToken, refreshToken string, user UserRecord) error {
	if accessToken == "" {
		return errors.New("[SetSession] access token is required")
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[SetSession] failed to marshal user record")
	}

	if err := m.store.Set(KeyUser, string(userJSON)); err != nil {
		return errors.Wrap(err, "[SetSession] failed to store user record")
	}
	if err := m.store.Set(KeyRefreshToken, refreshToken); err != nil {
		return errors.Wrap(err, "[SetSession] failed to store refresh token")
	}
	if err := m.store.Set(KeyAccessToken, accessToken); err != nil {
		return errors.Wrap(err, "[SetSession] failed to store access token")
	}
	return nil
}

// ClearSession removes all stored credentials. It is idempotent: clearing
// when no session exists is a no-op, not an error. The access token is
// removed first so the session stops looking authenticated before anything
// else is touched.
func (m *Manager) ClearSession() error {
	if err := m.store.Delete(KeyAccessToken); err != nil {
		return errors.Wrap(err, "[ClearSession] failed to delete access token")
	}
	if err := m.store.Delete(KeyRefreshToken); err != nil {
		return errors.Wrap(err, "[ClearSession] failed to delete refresh token")
	}
	if err := m.store.Delete(KeyUser); err != nil {
		return errors.Wrap(err, "[ClearSession] failed to delete user record")
	}
	return nil
}

// IsAuthenticated reports whether an access token is present. This is a
// presence check only: it does not validate the token's signature or expiry
// locally. An unreadable store counts as not authenticated.
func (m *Manager) IsAuthenticated() bool {
	token, ok := m.AccessToken()
	return ok && token != ""
}

// AccessToken returns the stored access token, if any.
func (m *Manager) AccessToken() (string, bool) {
	value, ok, err := m.store.Get(KeyAccessToken)
	if err != nil || !ok {
		return "", false
	}
	return value, true
}

// RefreshToken returns the stored refresh token, if any.
func (m *Manager) RefreshToken() (string, bool) {
	value, ok, err := m.store.Get(KeyRefreshToken)
	if err != nil || !ok {
		return "", false
	}
	return value, true
}

// Current assembles the stored session. It returns nil when no access token
// is present, and ErrCorruptSession when the stored user record cannot be
// decoded.
func (m *Manager) Current() (*Session, error) {
	accessToken, ok := m.AccessToken()
	if !ok {
		return nil, nil
	}

	user, err := m.CurrentUser()
	if err != nil {
		return nil, err
	}

	refreshToken, _ := m.RefreshToken()
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// CurrentUser deserializes the stored user record. A missing record returns
// (nil, nil). Stored data that is present but not valid JSON returns
// ErrCorruptSession, which callers should treat the same as "no session".
func (m *Manager) CurrentUser() (UserRecord, error) {
	value, ok, err := m.store.Get(KeyUser)
	if err != nil {
		return nil, errors.Wrap(err, "[CurrentUser] failed to read user record")
	}
	if !ok {
		return nil, nil
	}

	var user UserRecord
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, errors.Wrap(ErrCorruptSession, err.Error())
	}
	return user, nil
}
