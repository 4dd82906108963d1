package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func envMap(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(envMap(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HashSalt != "default_salt_value" {
		t.Fatalf("HashSalt = %q", cfg.HashSalt)
	}
	if cfg.Backend != BackendJSON {
		t.Fatalf("Backend = %q", cfg.Backend)
	}
	want := filepath.Join(home, ".config", "passm", "passwords.json")
	if cfg.VaultPath != want {
		t.Fatalf("VaultPath = %q, want %q", cfg.VaultPath, want)
	}
	if cfg.Debug {
		t.Fatal("Debug should default to false")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	body := `{"hash_salt":"from-file","vault_path":"/file/vault.json","policy":{"min_length":10,"strict":true}}`
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(envMap(map[string]string{
		EnvConfig:   cfgPath,
		EnvHashSalt: "from-env",
		EnvDebug:    "1",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HashSalt != "from-env" {
		t.Fatalf("HashSalt = %q, want env value", cfg.HashSalt)
	}
	if cfg.VaultPath != "/file/vault.json" {
		t.Fatalf("VaultPath = %q, want file value", cfg.VaultPath)
	}
	if !cfg.Debug {
		t.Fatal("expected Debug from env")
	}
	opts := cfg.Policy.Options()
	if opts.MinLength != 12 || !opts.RequireClasses {
		t.Fatalf("strict policy not applied: %+v", opts)
	}
}

func TestSQLiteDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(envMap(map[string]string{EnvBackend: BackendSQLite}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if filepath.Base(cfg.VaultPath) != "vault.db" {
		t.Fatalf("VaultPath = %q, want vault.db", cfg.VaultPath)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(envMap(map[string]string{EnvBackend: "redis"}))
	if err == nil || !strings.Contains(err.Error(), "Backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}

func TestLoadRejectsBadScore(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(cfgPath, []byte(`{"policy":{"min_score":9}}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(envMap(map[string]string{EnvConfig: cfgPath, EnvVaultPath: "/x"})); err == nil {
		t.Fatal("expected min_score validation error")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(cfgPath, []byte(`{`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(envMap(map[string]string{EnvConfig: cfgPath})); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PASSM_TEST_DOTENV=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PASSM_TEST_DOTENV", "")
	os.Unsetenv("PASSM_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("PASSM_TEST_DOTENV"); got != "from-dotenv" {
		t.Fatalf("PASSM_TEST_DOTENV = %q", got)
	}
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}

func TestLoadReportsMissingHome(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		t.Skip("home directory is not read from HOME")
	}
	t.Setenv("HOME", "")

	_, err := Load(envMap(nil))
	if err == nil || !strings.Contains(err.Error(), "resolve home directory") {
		t.Fatalf("expected home directory error, got %v", err)
	}

	cfgPath := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(envMap(map[string]string{EnvConfig: cfgPath, EnvVaultPath: "/tmp/v.json"}))
	if err != nil {
		t.Fatalf("explicit paths should not need HOME: %v", err)
	}
	if cfg.VaultPath != "/tmp/v.json" {
		t.Fatalf("VaultPath = %q", cfg.VaultPath)
	}
}
