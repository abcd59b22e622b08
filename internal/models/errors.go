package models

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidOdds      = errors.New("invalid odds")
	ErrInvalidBankroll  = errors.New("invalid bankroll")
	ErrUnknownPolicy    = errors.New("unknown staking policy")
	ErrInvalidParameter = errors.New("invalid model parameter")
)

// ValidationError reports a missing, non-numeric or out-of-range input field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("field '%s': %s (got '%v')", e.Field, e.Reason, e.Value)
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// InvalidOddsError reports decimal odds that cannot be priced (odds <= 1).
type InvalidOddsError struct {
	Name string
	Odds float64
}

func (e *InvalidOddsError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid odds %.4f: decimal odds must be greater than 1.0", e.Odds)
	}
	return fmt.Sprintf("invalid odds %.4f for %s: decimal odds must be greater than 1.0", e.Odds, e.Name)
}

// Is lets callers match any InvalidOddsError with errors.Is(err, ErrInvalidOdds).
func (e *InvalidOddsError) Is(target error) bool {
	return target == ErrInvalidOdds
}

// NewInvalidOddsError creates a new invalid odds error
func NewInvalidOddsError(name string, odds float64) *InvalidOddsError {
	return &InvalidOddsError{Name: name, Odds: odds}
}

// InvalidBankroll wraps ErrInvalidBankroll with the offending amount.
func InvalidBankroll(bankroll float64) error {
	return fmt.Errorf("%w: bankroll must be positive, got %.2f", ErrInvalidBankroll, bankroll)
}
