package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hussein-Mazeh/passm/internal/vault"
)

const (
	defaultDirName  = "passm"
	defaultFilename = "passwords.json"
)

// ErrNotInitialized indicates no vault has been created at the location yet.
var ErrNotInitialized = errors.New("no vault found; run `passm init` first")

// ResolvePath returns custom when set, otherwise ~/.config/passm/passwords.json.
func ResolvePath(custom string) (string, error) {
	if custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", defaultDirName, defaultFilename), nil
}

// FileStore persists the whole vault as one JSON document.
// It does not lock: concurrent writers against one path are unsupported.
type FileStore struct {
	Path string
}

// NewFileStore returns a store rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) ensureDir() error {
	if s.Path == "" {
		return errors.New("vault path not specified")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	return nil
}

// Exists reports whether a vault file is present.
func (s *FileStore) Exists() (bool, error) {
	_, err := os.Stat(s.Path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat vault: %w", err)
	}
}

// Load reads and decodes the vault file.
func (s *FileStore) Load() (*vault.Vault, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("read vault: %w", err)
	}

	v, err := vault.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load vault %s: %w", s.Path, err)
	}
	return v, nil
}

// Save replaces the vault file atomically with restrictive permissions.
func (s *FileStore) Save(v *vault.Vault) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := vault.Marshal(v)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), "passwords-*.json")
	if err != nil {
		return fmt.Errorf("create temp vault: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp vault: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp vault: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp vault: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp vault: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace vault: %w", err)
	}

	return nil
}

// String describes the store for log lines.
func (s *FileStore) String() string { return "json:" + s.Path }
