package models

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var ErrPasswordLength = errors.New("password must be between 8 and 72 bytes")

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	if err := validateStruct(u); err != nil {
		return err
	}
	if u.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}
	if u.PasswordHash == "" {
		return errors.New("password is not set")
	}
	return nil
}

// SetPassword hashes and stores the password
func (u *User) SetPassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrPasswordLength
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
