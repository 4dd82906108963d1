package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const strongPassword = "Xq7#mP2$vL9@wK4!"

func TestValidateMasterPassword(t *testing.T) {
	cases := []struct {
		pw   string
		ok   bool
		name string
	}{
		{"Short1!", false, "too short"},
		{"alllowercase1!x", false, "no upper"},
		{"NoDigitsHere!!x", false, "no digit"},
		{"NoSpecials1234x", false, "no special"},
		{strongPassword, true, "valid"},
	}
	for _, tc := range cases {
		err := ValidateMasterPassword(tc.pw)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: ValidateMasterPassword(%q) = %v", tc.name, tc.pw, err)
		}
	}
}

func TestDefaultOptionsAreLenient(t *testing.T) {
	ctx := context.Background()
	if err := ValidateMasterPasswordAdvanced(ctx, "correct-horse", DefaultValidateOptions()); err != nil {
		t.Fatalf("expected default policy to accept: %v", err)
	}
	if err := ValidateMasterPasswordAdvanced(ctx, "short", DefaultValidateOptions()); err == nil {
		t.Fatal("expected default policy to enforce minimum length")
	}
	if err := ValidateMasterPasswordAdvanced(ctx, "", ValidateOptions{}); err == nil {
		t.Fatal("expected empty password to be rejected")
	}
}

func TestStrictOptions(t *testing.T) {
	ctx := context.Background()
	if err := ValidateMasterPasswordAdvanced(ctx, strongPassword, StrictValidateOptions()); err != nil {
		t.Fatalf("expected strong password to pass: %v", err)
	}
	if err := ValidateMasterPasswordAdvanced(ctx, "Password1234!", StrictValidateOptions()); err == nil {
		t.Fatal("expected guessable password to fail the zxcvbn floor")
	}
}

func TestStrength(t *testing.T) {
	if s := Strength("password", nil); s != 0 {
		t.Fatalf("Strength(password) = %d, want 0", s)
	}
	if s := Strength(strongPassword, nil); s < 3 {
		t.Fatalf("Strength(strong) = %d, want >= 3", s)
	}
}

// sha1("password") = 5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8
func hibpServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/range/5BAA6" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHIBPCheckFound(t *testing.T) {
	srv := hibpServer(t, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n1e4c9b93f3f0682250b6cf8331b7ee68fd8:3861493\r\n", http.StatusOK)
	client := &HIBPClient{BaseURL: srv.URL + "/range/", HTTP: srv.Client()}

	res, err := client.Check(context.Background(), "password")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Found || res.Count != 3861493 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHIBPCheckIgnoresPadding(t *testing.T) {
	srv := hibpServer(t, "1E4C9B93F3F0682250B6CF8331B7EE68FD8:0\r\n", http.StatusOK)
	client := &HIBPClient{BaseURL: srv.URL + "/range/", HTTP: srv.Client()}

	res, err := client.Check(context.Background(), "password")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Found {
		t.Fatal("padding row must not count as a match")
	}
}

func TestHIBPCheckHTTPError(t *testing.T) {
	srv := hibpServer(t, "", http.StatusServiceUnavailable)
	client := &HIBPClient{BaseURL: srv.URL + "/range/", HTTP: srv.Client()}

	if _, err := client.Check(context.Background(), "password"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestAdvancedRejectsBreachedPassword(t *testing.T) {
	srv := hibpServer(t, "1E4C9B93F3F0682250B6CF8331B7EE68FD8:42\r\n", http.StatusOK)
	opts := ValidateOptions{
		EnableHIBP: true,
		HIBP:       &HIBPClient{BaseURL: srv.URL + "/range/", HTTP: srv.Client()},
	}
	err := ValidateMasterPasswordAdvanced(context.Background(), "password", opts)
	if !errors.Is(err, ErrBreached) {
		t.Fatalf("expected ErrBreached, got %v", err)
	}
}
