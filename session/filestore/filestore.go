package filestore

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jrsteele09/go-auth-client/session"
)

const storeFileName = "session.json"

var _ session.Store = (*Store)(nil)

// Store persists credentials in a single JSON file so they survive process
// restarts. Writes go through a temp file and rename, so a crash mid-write
// leaves either the old file or the new one, never a torn mix.
//
// When constructed with WithSealingKey the whole file is encrypted at rest
// with ChaCha20-Poly1305, nonce prefixed to the ciphertext.
type Store struct {
	path string
	aead cipher.AEAD // nil when the store is unsealed
	lock sync.Mutex
}

// Option modifies a Store during construction.
type Option func(*Store) error

// WithSealingKey enables at-rest encryption. The key must be exactly 32 bytes.
func WithSealingKey(key []byte) Option {
	return func(s *Store) error {
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return errors.Wrap(err, "[WithSealingKey] invalid key")
		}
		s.aead = aead
		return nil
	}
}

// New creates a file store rooted in dir, creating the directory if needed.
func New(dir string, options ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("[filestore.New] dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filestore.New] failed to create data folder")
	}

	s := &Store{path: filepath.Join(dir, storeFileName)}
	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		return errors.Wrap(err, "[filestore.Set] load")
	}
	values[key] = value
	return errors.Wrap(s.save(values), "[filestore.Set] save")
}

func (s *Store) Get(key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, errors.Wrap(err, "[filestore.Get] load")
	}
	value, ok := values[key]
	return value, ok, nil
}

func (s *Store) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		return errors.Wrap(err, "[filestore.Delete] load")
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return errors.Wrap(s.save(values), "[filestore.Delete] save")
}

func (s *Store) load() (map[string]string, error) {
	blob, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	if s.aead != nil {
		blob, err = s.open(blob)
		if err != nil {
			return nil, err
		}
	}

	values := map[string]string{}
	if err := json.Unmarshal(blob, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	blob, err := json.Marshal(values)
	if err != nil {
		return err
	}

	if s.aead != nil {
		blob, err = s.seal(blob)
		if err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *Store) open(blob []byte) ([]byte, error) {
	if len(blob) < s.aead.NonceSize() {
		return nil, errors.New("sealed store file too short")
	}
	nonce, ciphertext := blob[:s.aead.NonceSize()], blob[s.aead.NonceSize():]
	return s.aead.Open(nil, nonce, ciphertext, nil)
}
