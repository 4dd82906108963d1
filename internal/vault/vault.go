package vault

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is one stored credential. Username is kept in clear because it doubles
// as salt material for the entry key.
type Entry struct {
	Username        string
	EncryptedSecret string
}

// MarshalJSON encodes the entry as a two-element array: [username, blob].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Username, e.EncryptedSecret})
}

// UnmarshalJSON decodes the [username, blob] array form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode entry: expected [username, secret], got %d elements", len(pair))
	}
	e.Username = pair[0]
	e.EncryptedSecret = pair[1]
	return nil
}

// Vault is the root persisted object: the master password hash plus every entry,
// keyed by service name. It is loaded and saved as a whole.
type Vault struct {
	MasterPasswordHash string           `json:"master_password_hash"`
	Entries            map[string]Entry `json:"entries"`
}

// New returns an empty vault guarded by the given master password hash.
func New(masterHash string) *Vault {
	return &Vault{
		MasterPasswordHash: masterHash,
		Entries:            make(map[string]Entry),
	}
}

// Put inserts or replaces the entry for service.
func (v *Vault) Put(service string, e Entry) {
	if v.Entries == nil {
		v.Entries = make(map[string]Entry)
	}
	v.Entries[service] = e
}

// Lookup returns the entry stored for service.
func (v *Vault) Lookup(service string) (Entry, bool) {
	e, ok := v.Entries[service]
	return e, ok
}

// Remove deletes the entry for service and reports whether it existed.
func (v *Vault) Remove(service string) bool {
	if _, ok := v.Entries[service]; !ok {
		return false
	}
	delete(v.Entries, service)
	return true
}

// Len reports the number of entries.
func (v *Vault) Len() int { return len(v.Entries) }

// Services returns the service names in lexical order.
func (v *Vault) Services() []string {
	out := make([]string, 0, len(v.Entries))
	for name := range v.Entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SharedUsername returns the other services whose entry uses username.
// Entries sharing a username derive the same encryption key.
func (v *Vault) SharedUsername(service, username string) []string {
	var out []string
	for _, name := range v.Services() {
		if name != service && v.Entries[name].Username == username {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks the invariants every persisted vault must hold.
func (v *Vault) Validate() error {
	if v.MasterPasswordHash == "" {
		return ErrMissingMasterHash
	}
	return nil
}

// Marshal encodes v in the on-disk JSON layout.
func Marshal(v *Vault) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	out := *v
	if out.Entries == nil {
		out.Entries = map[string]Entry{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode vault: %w", err)
	}
	return data, nil
}

// Unmarshal decodes the on-disk JSON layout.
func Unmarshal(data []byte) (*Vault, error) {
	var v Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vault: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if v.Entries == nil {
		v.Entries = make(map[string]Entry)
	}
	return &v, nil
}
