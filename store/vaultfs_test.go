package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Hussein-Mazeh/passm/internal/vault"
	"github.com/Hussein-Mazeh/passm/store"
)

func TestLoadMissingVault(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "passwords.json"))

	ok, err := s.Exists()
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("expected no vault")
	}
	if _, err := s.Load(); !errors.Is(err, store.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "passwords.json")
	s := store.NewFileStore(path)

	v := vault.New("aGFzaA")
	v.Put("github", vault.Entry{Username: "alice", EncryptedSecret: "YmxvYg"})
	if err := s.Save(v); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ok, err := s.Exists()
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e, ok := got.Lookup("github")
	if !ok || e.Username != "alice" || e.EncryptedSecret != "YmxvYg" {
		t.Fatalf("unexpected entry %#v", e)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"github":["alice","YmxvYg"]`) {
		t.Fatalf("unexpected layout: %s", data)
	}
}

func TestSaveRewritesWholeVault(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "passwords.json"))

	v := vault.New("h")
	v.Put("a", vault.Entry{Username: "u", EncryptedSecret: "x"})
	v.Put("b", vault.Entry{Username: "u", EncryptedSecret: "y"})
	if err := s.Save(v); err != nil {
		t.Fatalf("Save: %v", err)
	}

	v.Remove("a")
	if err := s.Save(v); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected 1 entry after rewrite, got %d", got.Len())
	}
	if _, ok := got.Lookup("a"); ok {
		t.Fatal("removed entry came back")
	}
}

func TestSaveSetsOwnerOnlyPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	path := filepath.Join(t.TempDir(), "passwords.json")
	if err := store.NewFileStore(path).Save(vault.New("h")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("permissions = %o, want 600", perm)
	}
}

func TestSaveRejectsVaultWithoutHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwords.json")
	if err := store.NewFileStore(path).Save(&vault.Vault{}); !errors.Is(err, vault.ErrMissingMasterHash) {
		t.Fatalf("expected ErrMissingMasterHash, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("nothing should have been written")
	}
}

func TestLoadCorruptVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwords.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := store.NewFileStore(path).Load()
	if err == nil || errors.Is(err, store.ErrNotInitialized) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	got, err := store.ResolvePath("/tmp/custom.json")
	if err != nil || got != "/tmp/custom.json" {
		t.Fatalf("ResolvePath(custom) = %q, %v", got, err)
	}

	t.Setenv("HOME", "/home/tester")
	if runtime.GOOS == "windows" {
		t.Skip("home resolution differs on windows")
	}
	got, err = store.ResolvePath("")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	want := filepath.Join("/home/tester", ".config", "passm", "passwords.json")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}
