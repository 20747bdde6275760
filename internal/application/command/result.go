package command

import (
	"errors"

	"github.com/heroforge-edu/heroforge-engine/internal/domain/shared"
)

// Result is the caller-facing outcome of an engine operation. Operations
// never surface domain-rule violations as errors: a refused cast or an
// underfunded redemption is the normal "nothing happened" path, reported
// with Success false and a human-readable Error.
type Result struct {
	Success bool
	Message string
	Error   string
}

// succeed builds a successful result.
func succeed(message string) Result {
	return Result{Success: true, Message: message}
}

// refuse builds a non-fatal failure with a human-readable explanation.
func refuse(explanation string) Result {
	return Result{Success: false, Error: explanation}
}

// failFromError converts an operation error into a Result. Rule violations
// and validation errors keep their message; anything else is reported as a
// generic failure with the underlying message preserved for diagnostics.
func failFromError(err error) Result {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && (shared.IsRuleViolation(err) || shared.IsValidation(err) || shared.IsNotFound(err)) {
		return refuse(domainErr.Message)
	}
	if shared.IsRuleViolation(err) || shared.IsValidation(err) || shared.IsNotFound(err) {
		return refuse(err.Error())
	}
	return refuse("operation failed: " + err.Error())
}
