// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValueOutOfRange = errors.New("value out of range")

	// Engine rule errors
	ErrInsufficientFunds    = errors.New("insufficient gold")
	ErrInsufficientMP       = errors.New("insufficient mp")
	ErrPowerNotFound        = errors.New("power not found")
	ErrPowerNotUnlocked     = errors.New("power not unlocked")
	ErrOnCooldown           = errors.New("power on cooldown")
	ErrNoEligibleTargets    = errors.New("no eligible targets")
	ErrWastedCast           = errors.New("cast would be wasted")
	ErrInvalidLevelingTable = errors.New("leveling table not strictly increasing")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Storage errors
	ErrStorage = errors.New("storage failure")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "hero", "reward", "power"
	Op      string // Operation that failed, e.g., "ApproveBoon", "UsePower"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRuleViolation checks if the error is a game-rule violation. Rule
// violations are the normal "nothing happened" path: operations convert them
// into a failed Result rather than surfacing them to the caller.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientMP) ||
		errors.Is(err, ErrPowerNotFound) ||
		errors.Is(err, ErrPowerNotUnlocked) ||
		errors.Is(err, ErrOnCooldown) ||
		errors.Is(err, ErrNoEligibleTargets) ||
		errors.Is(err, ErrWastedCast)
}
