package services

import (
	"net/mail"
	"strings"

	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/auth"
)

// ValidateEmail checks the address format and returns it normalised to lower case.
func ValidateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", apperr.Validation("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("email is invalid")
	}
	return email, nil
}

// ValidatePassword enforces the password length bounds. The upper bound is
// in bytes because bcrypt rejects anything longer.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Validation("password must be at least 8 characters")
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperr.Validation("password must be at most 72 bytes")
	}
	return nil
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.Validation(field + " is required")
	}
	return value, nil
}
