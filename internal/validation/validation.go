// Package validation contains input validation shared by the server handlers
// and the client.
package validation

import (
	"fmt"
	"regexp"
)

// EmailPattern accepts the usual local@domain.tld shape: no whitespace, no
// second @, at least one dot in the domain.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	// MaxEmailLen caps email length to keep the unique index small.
	MaxEmailLen = 254
	// MaxFirstNameLen caps the display name.
	MaxFirstNameLen = 100
)

// ValidateEmail checks that email is present and matches EmailPattern.
// The address is compared case-sensitive everywhere, exactly as stored.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}
	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email must be a valid address like name@example.com")
	}
	return nil
}

// ValidateFirstName checks that the display name is present.
func ValidateFirstName(firstName string) error {
	if firstName == "" {
		return fmt.Errorf("first name cannot be empty")
	}
	if len(firstName) > MaxFirstNameLen {
		return fmt.Errorf("first name must not exceed %d characters", MaxFirstNameLen)
	}
	return nil
}

// ValidatePassword checks that a password is present. No minimum length is
// enforced here; existing accounts predate any policy.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}
