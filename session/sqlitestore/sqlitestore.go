package sqlitestore

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/jrsteele09/go-auth-client/session"
)

var _ session.Store = (*Store)(nil)

// Store persists credentials in a local SQLite database. It uses the pure Go
// driver, so no cgo is involved.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) a credential store at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("[sqlitestore.Open] path is required")
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.Open] failed to open database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] failed to ping database")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] failed to create credentials table")
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO credentials(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return errors.Wrap(err, "[sqlitestore.Set] upsert")
}

func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[sqlitestore.Get] select")
	}
	return value, true, nil
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM credentials WHERE key = ?`, key)
	return errors.Wrap(err, "[sqlitestore.Delete] delete")
}
