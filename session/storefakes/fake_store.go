package storefakes

import (
	"errors"
	"sync"

	"github.com/jrsteele09/go-auth-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credential store for tests. Failure injection
// fields let tests simulate an unavailable or partially failing store.
type FakeStore struct {
	values map[string]string
	lock   sync.RWMutex

	FailSetKeys map[string]bool // Set on these keys returns an error
	FailGet     bool            // All Gets return an error
	FailDelete  bool            // All Deletes return an error
	SetCalls    []string        // Keys passed to Set, in call order
	DeleteCalls []string        // Keys passed to Delete, in call order
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		values:      make(map[string]string),
		FailSetKeys: make(map[string]bool),
	}
}

func (fs *FakeStore) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.SetCalls = append(fs.SetCalls, key)
	if fs.FailSetKeys[key] {
		return errors.New("store unavailable")
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStore) Get(key string) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	if fs.FailGet {
		return "", false, errors.New("store unavailable")
	}
	value, ok := fs.values[key]
	return value, ok, nil
}

func (fs *FakeStore) Delete(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.DeleteCalls = append(fs.DeleteCalls, key)
	if fs.FailDelete {
		return errors.New("store unavailable")
	}
	delete(fs.values, key)
	return nil
}

// Keys returns the keys currently present, for assertions on partial writes.
func (fs *FakeStore) Keys() []string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	keys := make([]string, 0, len(fs.values))
	for k := range fs.values {
		keys = append(keys, k)
	}
	return keys
}
