package models

import (
	"errors"
	"strings"
)

// Validate checks if the tag meets all validation requirements
func (t *Tag) Validate() error {
	if err := validateStruct(t); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}
	return nil
}

// Key is the case-insensitive identity of the tag name.
func (t *Tag) Key() string {
	return TagKey(t.Name)
}

// TagKey returns the lookup key of a tag name.
func TagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
