package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Hussein-Mazeh/passm/internal/service"
	"github.com/Hussein-Mazeh/passm/internal/vault"
	"github.com/Hussein-Mazeh/passm/store"
)

func TestParseWithService(t *testing.T) {
	cases := []struct {
		args    []string
		service string
		user    string
		wantErr bool
	}{
		{[]string{"github", "-u", "alice"}, "github", "alice", false},
		{[]string{"-u", "alice", "github"}, "github", "alice", false},
		{[]string{"github"}, "github", "", false},
		{[]string{"-u", "alice"}, "", "", true},
		{[]string{"github", "extra"}, "", "", true},
		{[]string{"github", "--bogus"}, "", "", true},
	}
	for _, tc := range cases {
		fs, _ := newFlagSet("add")
		user := fs.String("u", "", "")
		got, err := parseWithService(fs, tc.args)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%v: err = %v", tc.args, err)
		}
		if tc.wantErr {
			continue
		}
		if got != tc.service || *user != tc.user {
			t.Fatalf("%v: service=%q user=%q", tc.args, got, *user)
		}
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{userError{msg: "boom"}, "boom"},
		{fmt.Errorf("load vault: %w", store.ErrNotInitialized), store.ErrNotInitialized.Error()},
		{service.ErrInvalidMasterPassword, "Invalid master password."},
		{fmt.Errorf("%s: %w", "github", service.ErrNotFound), "No entry found for service: github"},
		{&vault.DecryptionError{Err: vault.ErrAuthenticationFailure}, "Error decrypting password: the stored entry could not be authenticated or decoded."},
	}
	for _, tc := range cases {
		got, ok := userMessage(tc.err)
		if !ok || got != tc.want {
			t.Fatalf("userMessage(%v) = %q, %v; want %q", tc.err, got, ok, tc.want)
		}
	}

	if _, ok := userMessage(errors.New("disk on fire")); ok {
		t.Fatal("unexpected errors must not map to a user message")
	}
}
