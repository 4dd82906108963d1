package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Hussein-Mazeh/passm/auth"
	"github.com/Hussein-Mazeh/passm/internal/vault"
)

var (
	// ErrAlreadyInitialized is returned by Init when a vault already exists.
	ErrAlreadyInitialized = errors.New("vault already initialised")
	// ErrNotFound is returned when no entry exists for a service.
	ErrNotFound = errors.New("not found")
	// ErrInvalidMasterPassword is returned when the master password does not verify.
	ErrInvalidMasterPassword = errors.New("invalid master password")
)

// Store persists a whole vault. Both the JSON file store and the SQLite store satisfy it.
type Store interface {
	Exists() (bool, error)
	Load() (*vault.Vault, error)
	Save(*vault.Vault) error
}

// Service exposes high-level vault operations for the CLI. Every operation
// loads the vault fresh and mutating operations save it in full; nothing is
// cached between calls.
type Service struct {
	store  Store
	core   *vault.Core
	policy auth.ValidateOptions
	log    *log.Logger
}

// Option customises New.
type Option func(*Service)

// WithPolicy sets the master password policy applied by Init.
func WithPolicy(opts auth.ValidateOptions) Option {
	return func(s *Service) { s.policy = opts }
}

// WithLogger routes operational logging to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a service bound to a store and a configured crypto core.
func New(store Store, core *vault.Core, opts ...Option) *Service {
	s := &Service{
		store:  store,
		core:   core,
		policy: auth.DefaultValidateOptions(),
		log:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credential is a decrypted entry.
type Credential struct {
	Service  string
	Username string
	Password string
}

// Listing is an entry without its secret.
type Listing struct {
	Service  string
	Username string
}

// UpdateInput carries optional replacements; nil fields keep the current value.
type UpdateInput struct {
	Username *string
	Password *string
}

// Initialized reports whether the store already holds a vault.
func (s *Service) Initialized() (bool, error) {
	ok, err := s.store.Exists()
	if err != nil {
		return false, fmt.Errorf("check vault: %w", err)
	}
	return ok, nil
}

// Init creates an empty vault guarded by master.
func (s *Service) Init(ctx context.Context, master string) error {
	exists, err := s.Initialized()
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInitialized
	}

	if err := auth.ValidateMasterPasswordAdvanced(ctx, master, s.policy); err != nil {
		return fmt.Errorf("validate master password: %w", err)
	}

	hash, err := s.core.HashMasterPassword(master)
	if err != nil {
		return err
	}

	if err := s.store.Save(vault.New(hash)); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}
	s.log.Printf("initialised vault at %v", s.store)
	return nil
}

// unlock loads the vault and verifies master against its stored hash.
func (s *Service) unlock(master string) (*vault.Vault, error) {
	v, err := s.load()
	if err != nil {
		return nil, err
	}
	if !s.core.VerifyMasterPassword(v.MasterPasswordHash, master) {
		s.log.Printf("master password rejected")
		return nil, ErrInvalidMasterPassword
	}
	return v, nil
}

func (s *Service) load() (*vault.Vault, error) {
	v, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load vault: %w", err)
	}
	s.log.Printf("loaded %d entries from %v", v.Len(), s.store)
	return v, nil
}

func (s *Service) save(v *vault.Vault) error {
	if err := s.store.Save(v); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}
	s.log.Printf("saved %d entries to %v", v.Len(), s.store)
	return nil
}

func (s *Service) warnSharedUsername(v *vault.Vault, service, username string) {
	if others := v.SharedUsername(service, username); len(others) > 0 {
		s.log.Printf("warning: %s shares its username with %s; these entries derive the same key",
			service, strings.Join(others, ", "))
	}
}

// Add encrypts password and stores it under service, replacing any existing entry.
func (s *Service) Add(service, username, password, master string) error {
	if service == "" || username == "" {
		return errors.New("service and username required")
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}

	v, err := s.unlock(master)
	if err != nil {
		return err
	}

	blob, err := s.core.EncryptEntrySecret(password, username, master)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	if _, exists := v.Lookup(service); exists {
		s.log.Printf("replacing existing entry for %s", service)
	}
	s.warnSharedUsername(v, service, username)
	v.Put(service, vault.Entry{Username: username, EncryptedSecret: blob})

	return s.save(v)
}

// Get returns the decrypted credential for service. It never writes to the store.
func (s *Service) Get(service, master string) (Credential, error) {
	v, err := s.load()
	if err != nil {
		return Credential{}, err
	}
	e, ok := v.Lookup(service)
	if !ok {
		return Credential{}, fmt.Errorf("%s: %w", service, ErrNotFound)
	}
	if !s.core.VerifyMasterPassword(v.MasterPasswordHash, master) {
		return Credential{}, ErrInvalidMasterPassword
	}

	plain, err := s.core.DecryptEntrySecret(e.EncryptedSecret, e.Username, master)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Service: service, Username: e.Username, Password: plain}, nil
}

// List returns every service and username, sorted by service. No master
// password is needed because usernames are stored in clear.
func (s *Service) List() ([]Listing, error) {
	v, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, v.Len())
	for _, name := range v.Services() {
		e, _ := v.Lookup(name)
		out = append(out, Listing{Service: name, Username: e.Username})
	}
	return out, nil
}

// Update replaces the username and/or password of service. The secret is
// decrypted under the current username and re-encrypted under the new one,
// which is the only safe way to rename a username.
func (s *Service) Update(service, master string, in UpdateInput) error {
	v, err := s.load()
	if err != nil {
		return err
	}
	cur, ok := v.Lookup(service)
	if !ok {
		return fmt.Errorf("%s: %w", service, ErrNotFound)
	}
	if !s.core.VerifyMasterPassword(v.MasterPasswordHash, master) {
		return ErrInvalidMasterPassword
	}

	plain, err := s.core.DecryptEntrySecret(cur.EncryptedSecret, cur.Username, master)
	if err != nil {
		return err
	}

	username := cur.Username
	if in.Username != nil {
		if *in.Username == "" {
			return errors.New("username cannot be empty")
		}
		username = *in.Username
	}
	password := plain
	if in.Password != nil {
		if *in.Password == "" {
			return errors.New("password cannot be empty")
		}
		password = *in.Password
	}

	blob, err := s.core.EncryptEntrySecret(password, username, master)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	if username != cur.Username {
		s.warnSharedUsername(v, service, username)
	}
	v.Put(service, vault.Entry{Username: username, EncryptedSecret: blob})
	return s.save(v)
}

// Delete removes the entry for service after verifying master.
func (s *Service) Delete(service, master string) error {
	v, err := s.unlock(master)
	if err != nil {
		return err
	}
	if !v.Remove(service) {
		return fmt.Errorf("%s: %w", service, ErrNotFound)
	}
	return s.save(v)
}

// Migrate copies the whole vault into dst. It refuses to overwrite an existing vault.
func (s *Service) Migrate(dst Store) error {
	exists, err := dst.Exists()
	if err != nil {
		return fmt.Errorf("check destination: %w", err)
	}
	if exists {
		return fmt.Errorf("destination: %w", ErrAlreadyInitialized)
	}

	v, err := s.load()
	if err != nil {
		return err
	}
	if err := dst.Save(v); err != nil {
		return fmt.Errorf("save destination: %w", err)
	}
	s.log.Printf("migrated %d entries from %v to %v", v.Len(), s.store, dst)
	return nil
}
