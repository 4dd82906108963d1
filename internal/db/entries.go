package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Hussein-Mazeh/passm/internal/vault"
	"github.com/Hussein-Mazeh/passm/store"
)

const masterHashKey = "master_password_hash"

// Store keeps a whole vault in SQLite. Save replaces every row in one
// transaction so the vault stays the unit of persistence.
type Store struct {
	db *DB
}

// NewStore opens (creating if needed) the database at path and migrates it.
// The caller must Close the store.
func NewStore(path string) (*Store, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(d); err != nil {
		Close(d)
		return nil, err
	}
	return &Store{db: d}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return Close(s.db)
}

func (s *Store) masterHash() (string, error) {
	var hash string
	err := s.db.sql.QueryRow(`SELECT value FROM meta WHERE key = ?`, masterHashKey).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotInitialized
		}
		return "", fmt.Errorf("select master hash: %w", err)
	}
	return hash, nil
}

// Exists reports whether a vault has been saved to the database.
func (s *Store) Exists() (bool, error) {
	_, err := s.masterHash()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotInitialized):
		return false, nil
	default:
		return false, err
	}
}

// Load reads the master hash and every entry.
func (s *Store) Load() (*vault.Vault, error) {
	hash, err := s.masterHash()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.sql.Query(`SELECT service, username, encrypted_secret FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	v := vault.New(hash)
	for rows.Next() {
		var service string
		var e vault.Entry
		if err := rows.Scan(&service, &e.Username, &e.EncryptedSecret); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		v.Put(service, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}

	return v, nil
}

// Save replaces the stored vault with v.
func (s *Store) Save(v *vault.Vault) error {
	if err := v.Validate(); err != nil {
		return err
	}

	tx, err := s.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		masterHashKey, v.MasterPasswordHash,
	); err != nil {
		return fmt.Errorf("upsert master hash: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entries (service, username, encrypted_secret) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for service, e := range v.Entries {
		if _, err := stmt.Exec(service, e.Username, e.EncryptedSecret); err != nil {
			return fmt.Errorf("insert entry %q: %w", service, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// String describes the store for log lines.
func (s *Store) String() string { return "sqlite:" + s.db.Path() }
