package service

import (
	"fmt"

	"github.com/Hussein-Mazeh/passm/internal/config"
	"github.com/Hussein-Mazeh/passm/internal/db"
	"github.com/Hussein-Mazeh/passm/internal/vault"
	"github.com/Hussein-Mazeh/passm/store"
)

// OpenStore returns the store for backend at path and a function that releases it.
func OpenStore(backend, path string) (Store, func() error, error) {
	switch backend {
	case config.BackendJSON, "":
		return store.NewFileStore(path), func() error { return nil }, nil
	case config.BackendSQLite:
		st, err := db.NewStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store (%s): %w", path, err)
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// FromConfig wires the store, crypto core and policy described by cfg.
// The returned function closes the store.
func FromConfig(cfg config.Config, opts ...Option) (*Service, func() error, error) {
	st, closeStore, err := OpenStore(cfg.Backend, cfg.VaultPath)
	if err != nil {
		return nil, nil, err
	}

	core, err := vault.NewCore(cfg.HashSalt)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("configure crypto: %w", err)
	}

	opts = append([]Option{WithPolicy(cfg.Policy.Options())}, opts...)
	return New(st, core, opts...), closeStore, nil
}
