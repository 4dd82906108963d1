package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Hussein-Mazeh/passm/internal/config"
	"github.com/Hussein-Mazeh/passm/internal/service"
	"github.com/Hussein-Mazeh/passm/internal/vault"
	"github.com/Hussein-Mazeh/passm/krypto"
)

// vaultdump prints what a vault stores without decrypting anything.
func main() {
	backend := flag.String("backend", config.BackendJSON, "vault backend (json or sqlite)")
	path := flag.String("path", "", "vault location")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --path")
		os.Exit(1)
	}

	st, closeFn, err := service.OpenStore(*backend, *path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	v, err := st.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load vault: %v\n", err)
		os.Exit(1)
	}

	dump(os.Stdout, v)
}

func dump(w io.Writer, v *vault.Vault) {
	fmt.Fprintf(w, "master_password_hash: %s\n", v.MasterPasswordHash)
	if v.Len() == 0 {
		fmt.Fprintln(w, "no entries")
		return
	}

	for _, name := range v.Services() {
		e, _ := v.Lookup(name)
		fmt.Fprintf(w, "%s | %s\n", name, e.Username)

		raw, err := krypto.DecodeString(e.EncryptedSecret)
		if err != nil {
			fmt.Fprintf(w, "  encrypted_secret: invalid base64 (%v)\n", err)
			continue
		}
		if len(raw) < krypto.NonceSize+krypto.TagSize {
			fmt.Fprintf(w, "  encrypted_secret: truncated (%d bytes)\n", len(raw))
			continue
		}
		fmt.Fprintf(w, "  encrypted_secret (%d bytes, %d-byte secret): %s\n",
			len(raw), len(raw)-krypto.NonceSize-krypto.TagSize, e.EncryptedSecret)
		if others := v.SharedUsername(name, e.Username); len(others) > 0 {
			fmt.Fprintf(w, "  shares key with: %v\n", others)
		}
	}
}
