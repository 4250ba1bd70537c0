package oui

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases
var (
	ErrInvalidMAC       = errors.New("invalid MAC address format")
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrEmptyMAC         = errors.New("empty MAC address")
	ErrRepositoryClosed = errors.New("repository is closed")
)

// DatabaseError wraps database-specific errors with context
type DatabaseError struct {
	Op  string // Operation that failed (e.g., "lookup", "insert")
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("oui database %s failed: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// ValidationError wraps validation errors with the invalid value
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
