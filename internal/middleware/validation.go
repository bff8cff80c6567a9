package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateMessage validates chat message text against the configured length
// limit, measured in runes so multibyte input is not penalized.
func ValidateMessage(text string, maxLen int) error {
	if len(text) == 0 {
		return errors.New("message cannot be empty")
	}
	if !utf8.ValidString(text) {
		return errors.New("message must be valid UTF-8")
	}
	if utf8.RuneCountInString(text) > maxLen {
		return errors.New("message exceeds maximum length")
	}
	return nil
}

// ValidateSessionID validates a session ID. IDs are opaque strings chosen by
// the client, bounded only in length.
func ValidateSessionID(id string) error {
	if len(id) == 0 {
		return errors.New("session ID cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("session ID exceeds maximum length")
	}
	return nil
}

// ValidateCustomerID validates an optional customer ID.
func ValidateCustomerID(id string) error {
	if len(id) > 64 {
		return errors.New("customer ID exceeds maximum length")
	}
	return nil
}
