package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nonDigitsRegex = regexp.MustCompile(`[^\d]`)
)

// ValidateEmail checks whether the address looks deliverable. Uniqueness is
// enforced by the users table, not here.
func ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", fmt.Errorf("invalid email address")
	}
	return email, nil
}

// ValidatePassword enforces the minimum length the registration form
// promises ("mínimo 6 caracteres").
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must have at least 6 characters")
	}
	return nil
}

// ValidatePhoneNumber checks and normalizes a Brazilian phone number.
// Returns the number in +55DDXXXXXXXXX format or an error.
func ValidatePhoneNumber(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	digitsOnly := nonDigitsRegex.ReplaceAllString(phone, "")

	// Strip the country code when present, with or without the leading '+'.
	if strings.HasPrefix(digitsOnly, "55") && len(digitsOnly) >= 12 {
		digitsOnly = digitsOnly[2:]
	}

	// DD + 8-digit landline or DD + 9-digit mobile.
	if len(digitsOnly) == 10 || len(digitsOnly) == 11 {
		return "+55" + digitsOnly, nil
	}

	return "", fmt.Errorf("invalid phone number, expected a Brazilian number like +55 11 98888-0000")
}
