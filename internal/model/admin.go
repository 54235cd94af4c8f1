package model

import (
	"fmt"
	"time"
)

// Admin represents an administrator account that can review submissions.
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MinPasswordLength is the minimum admin password length.
const MinPasswordLength = 8

// ValidatePassword checks an admin password against the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
