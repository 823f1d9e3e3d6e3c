package session

// UserRecord is the opaque, JSON compatible record describing the
// authenticated principal. Its fields are defined by the remote service
// (identity, display attributes, permission flags), so it is carried as a
// generic object. A record is replaced wholesale on each login, never
// mutated in place.
type UserRecord map[string]any

// Session is the combination of credentials and cached user record that
// represents "logged in". AccessToken and User are set together on a
// successful login exchange; clearing removes everything.
type Session struct {
	AccessToken  string     // Short-lived credential attached to outbound requests
	RefreshToken string     // Longer-lived credential, persisted but not exchanged by this client
	User         UserRecord // Last known user record returned by the login exchange
}
