package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Hussein-Mazeh/passm/auth"
	"github.com/Hussein-Mazeh/passm/internal/vault"
	"github.com/Hussein-Mazeh/passm/store"
)

// Environment variables read by Load.
const (
	EnvHashSalt  = "HASH_SALT"
	EnvVaultPath = "JSON_PATH"
	EnvBackend   = "PASSM_BACKEND"
	EnvConfig    = "PASSM_CONFIG"
	EnvDebug     = "PASSM_DEBUG"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Policy controls the master password checks run by init.
type Policy struct {
	MinLength     int  `json:"min_length" validate:"gte=0"`
	MinScore      int  `json:"min_score" validate:"gte=0,lte=4"`
	Strict        bool `json:"strict"`
	CheckBreached bool `json:"check_breached"`
}

// Options converts the policy into auth.ValidateOptions.
func (p Policy) Options() auth.ValidateOptions {
	opts := auth.DefaultValidateOptions()
	if p.Strict {
		opts = auth.StrictValidateOptions()
	}
	if p.MinLength > opts.MinLength {
		opts.MinLength = p.MinLength
	}
	if p.MinScore > opts.MinZXCVBNScore {
		opts.MinZXCVBNScore = p.MinScore
	}
	opts.EnableHIBP = p.CheckBreached
	return opts
}

// Config is the resolved runtime configuration.
type Config struct {
	// HashSalt is the fixed master hash salt. It must not change for the life of a vault.
	HashSalt  string `json:"hash_salt" validate:"required"`
	VaultPath string `json:"vault_path" validate:"required"`
	Backend   string `json:"backend" validate:"oneof=json sqlite"`
	Policy    Policy `json:"policy"`
	Debug     bool   `json:"-"`
}

// Default returns the built-in configuration. VaultPath is left empty and
// resolved by Load.
func Default() Config {
	return Config{
		HashSalt: vault.DefaultHashSalt,
		Backend:  BackendJSON,
		Policy:   Policy{MinLength: auth.DefaultValidateOptions().MinLength},
	}
}

// Getenv looks up one environment variable; empty means unset.
type Getenv func(string) string

// LoadDotEnv loads .env from the working directory into the process
// environment. Existing variables are not overridden; a missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, the optional JSON config file
// and environment overrides, then validates it.
func Load(getenv Getenv) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	path, err := configPath(getenv)
	if err != nil {
		return cfg, err
	}
	if err := readFile(path, &cfg); err != nil {
		return cfg, err
	}

	if v := getenv(EnvHashSalt); v != "" {
		cfg.HashSalt = v
	}
	if v := getenv(EnvVaultPath); v != "" {
		cfg.VaultPath = v
	}
	if v := getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}

	if cfg.VaultPath == "" {
		cfg.VaultPath, err = defaultVaultPath(cfg.Backend)
		if err != nil {
			return cfg, err
		}
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func Validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func configPath(getenv Getenv) (string, error) {
	if p := getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "passm", "config.json"), nil
}

func readFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func defaultVaultPath(backend string) (string, error) {
	path, err := store.ResolvePath("")
	if err != nil {
		return "", err
	}
	if backend == BackendSQLite {
		path = filepath.Join(filepath.Dir(path), "vault.db")
	}
	return path, nil
}
