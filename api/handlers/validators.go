package handlers

import (
	"errors"
	"regexp"
	"time"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Sentinel errors surfaced in error response bodies
var (
	ErrInvalidInput       = errors.New("input validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCarIDTaken         = errors.New("car ID already registered")
	ErrNotOwned           = errors.New("car not owned by user")
	ErrNotInInventory     = errors.New("car not in dealership inventory")
)

// validateEmail reports whether the email has a plausible mailbox shape
func validateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// validatePassword enforces the minimum password length
func validatePassword(password string) bool {
	return len(password) >= 8
}

// parseLaunchDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates
func parseLaunchDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
