package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nbutton23/zxcvbn-go"
)

const specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_{|}~`"

// ErrBreached is returned when the password appears in the HIBP corpus.
var ErrBreached = errors.New("password appears in a known data breach")

// ValidateOptions selects which master password checks run.
type ValidateOptions struct {
	// MinLength is counted in runes. Zero disables the check.
	MinLength int
	// RequireClasses enforces the uppercase, digit and special character rules.
	RequireClasses bool
	// MinZXCVBNScore is the lowest acceptable zxcvbn score (0-4). Zero disables the check.
	MinZXCVBNScore int
	// EnableHIBP queries the Have I Been Pwned range API.
	EnableHIBP bool
	// HIBP overrides the client used when EnableHIBP is set.
	HIBP *HIBPClient
	// UserInputs are fed to zxcvbn as penalised dictionary words.
	UserInputs []string
}

// DefaultValidateOptions is the lenient policy applied by `passm init`.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{MinLength: 8}
}

// StrictValidateOptions mirrors ValidateMasterPassword and adds a zxcvbn floor.
func StrictValidateOptions() ValidateOptions {
	return ValidateOptions{
		MinLength:      12,
		RequireClasses: true,
		MinZXCVBNScore: 3,
	}
}

// ValidateMasterPassword applies the strict class requirements.
func ValidateMasterPassword(pw string) error {
	if utf8.RuneCountInString(pw) < 12 {
		return errors.New("password must be at least 12 characters long")
	}
	return checkClasses(pw)
}

// ValidateMasterPasswordAdvanced runs the checks selected by opts. Local checks
// run first so a weak password never reaches the network.
func ValidateMasterPasswordAdvanced(ctx context.Context, pw string, opts ValidateOptions) error {
	if pw == "" {
		return errors.New("password cannot be empty")
	}
	if opts.MinLength > 0 && utf8.RuneCountInString(pw) < opts.MinLength {
		return fmt.Errorf("password must be at least %d characters long", opts.MinLength)
	}
	if opts.RequireClasses {
		if err := checkClasses(pw); err != nil {
			return err
		}
	}
	if opts.MinZXCVBNScore > 0 {
		if score := Strength(pw, opts.UserInputs); score < opts.MinZXCVBNScore {
			return fmt.Errorf("password is too guessable (strength %d of 4, need %d)", score, opts.MinZXCVBNScore)
		}
	}
	if opts.EnableHIBP {
		client := opts.HIBP
		if client == nil {
			client = DefaultHIBPClient()
		}
		res, err := client.Check(ctx, pw)
		if err != nil {
			return fmt.Errorf("breach check: %w", err)
		}
		if res.Found {
			return fmt.Errorf("%w (%d occurrences)", ErrBreached, res.Count)
		}
	}
	return nil
}

// Strength returns the zxcvbn score (0-4) of pw.
func Strength(pw string, userInputs []string) int {
	return zxcvbn.PasswordStrength(pw, userInputs).Score
}

func checkClasses(pw string) error {
	if !hasUpper(pw) {
		return errors.New("password must include an uppercase letter")
	}
	if !hasDigit(pw) {
		return errors.New("password must include a digit")
	}
	if !hasSpecial(pw) {
		return errors.New("password must include a special character")
	}
	return nil
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSpecial(s string) bool {
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			return true
		}
	}
	return false
}
