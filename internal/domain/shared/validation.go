package shared

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
)

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the format of a required email address
func ValidateEmail(field, email string) error {
	if email == "" {
		return NewValidationError(field, "INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 {
		return NewValidationError(field, "INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return NewValidationError(field, "INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidatePhone checks an optional phone number
func ValidatePhone(field, phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > 50 {
		return NewValidationError(field, "INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	if !phonePattern.MatchString(phone) {
		return NewValidationError(field, "INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

// ValidateLength checks that s has between min and max runes
func ValidateLength(field, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		if min == 1 {
			return NewValidationError(field, "REQUIRED", field+" is required")
		}
		return NewValidationError(field, "TOO_SHORT", field+" is too short")
	}
	if max > 0 && n > max {
		return NewValidationError(field, "TOO_LONG", field+" is too long")
	}
	return nil
}
