// Package auth holds the credential primitives: the password policy and
// the access token issuer and verifier.
package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

// PolicyError lists every password rule that was not met.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return "password must " + strings.Join(e.Violations, ", ")
}

// ValidatePassword checks password against the policy: at least
// MinPasswordLength characters with an uppercase letter, a lowercase
// letter and a punctuation or symbol character.
func ValidatePassword(password string) error {
	var upper, lower, punct bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			punct = true
		}
	}

	var v []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		v = append(v, "be at least 8 characters long")
	}
	if !upper {
		v = append(v, "contain an uppercase letter")
	}
	if !lower {
		v = append(v, "contain a lowercase letter")
	}
	if !punct {
		v = append(v, "contain a punctuation or symbol character")
	}

	if len(v) > 0 {
		return &PolicyError{Violations: v}
	}
	return nil
}
