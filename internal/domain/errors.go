package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationNotFound is returned when no tax year is marked active.
	// It must reach the caller unchanged; calculators never substitute rates.
	ErrConfigurationNotFound = errors.New("no active tax configuration")

	// ErrMultipleActiveConfigurations is returned when more than one tax year is active.
	ErrMultipleActiveConfigurations = errors.New("more than one active tax configuration")

	// ErrInvalidInput marks malformed input rejected by a loader.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError describes a single rejected configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
