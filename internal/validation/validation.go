// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 5
	// MaxPasswordBytes is bcrypt's input limit; it is counted in bytes, not characters.
	MaxPasswordBytes = 72
	MaxEmailLength    = 254
	MaxNameLength     = 255
	MaxLinkLength     = 255
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims surrounding space and lower-cases the whole address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("This field may not be blank.")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("Enter a valid email address.")
	}
	// Rejects display-name forms the regex alone would not catch.
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("Enter a valid email address.")
	}
	return nil
}

// ValidatePassword requires at least MinPasswordLength characters and at most
// MaxPasswordBytes bytes of UTF-8.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("Ensure this field has at least %d characters.", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("Ensure this field has no more than %d bytes.", MaxPasswordBytes)
	}
	return nil
}

// ValidateName trims name and checks it is 1..MaxNameLength characters.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("Ensure this field has no more than %d characters.", MaxNameLength)
	}
	return name, nil
}

// ValidateOptionalLength checks an optional text field against max.
func ValidateOptionalLength(value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("Ensure this field has no more than %d characters.", max)
	}
	return nil
}
