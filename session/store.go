package session

// Storage slot names. These are the only keys the Manager reads or writes;
// external mutation of the underlying store is out of contract.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Store is durable key/value persistence for credentials. Implementations
// must survive process restarts (the in-memory fake being the test-only
// exception).
type Store interface {
	// Set writes a value under a key, replacing any previous value
	Set(key, value string) error

	// Get retrieves a value. The bool reports whether the key was present;
	// a missing key is not an error
	Get(key string) (string, bool, error)

	// Delete removes a key. Deleting a missing key is a no-op
	Delete(key string) error
}
