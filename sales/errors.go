/*
errors.go - Centralized error types for the sales core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Store backends and the API layer wrap these with additional context.

ERROR CATEGORIES:
  1. Store errors     - document-level persistence failures
  2. Caller errors    - rules the caller layer enforces before the core runs

NOT-FOUND POLICY:
  Deleting a record that does not exist is NOT an error here. Delete returns
  (false, nil) and callers decide what that means. Likewise ResolvePerson
  returns (Person{}, false) for an orphaned order reference. Ports from
  stricter codebases should not add error returns to these paths.

USAGE:
    if errors.Is(err, sales.ErrCorruptStore) {
        // document exists but could not be decoded; do NOT truncate it
    }

SEE ALSO:
  - store/jsonstore: wraps ErrCorruptStore around decode failures
  - api/handlers.go: maps these to HTTP status codes
*/
package sales

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCorruptStore is returned when a backing document exists but cannot
	// be decoded as the expected record list. It is propagated, never papered
	// over with an empty collection, so that a bad document is noticed before
	// the next full write destroys it.
	ErrCorruptStore = errors.New("corrupt store document")

	// ErrOrderReceived is returned by the caller layer when an edit targets
	// an order that already reached the received status. Received orders are
	// frozen.
	ErrOrderReceived = errors.New("received orders cannot be edited")

	// ErrValidation is the base for caller-layer precondition failures
	// (blank name, bad tax id, empty product selection). The core assumes
	// inputs are already validated and never raises this itself.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CorruptStoreError reports which document failed to decode and why.
type CorruptStoreError struct {
	Path  string
	Cause error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store document %s: %v", e.Path, e.Cause)
}

func (e *CorruptStoreError) Unwrap() error { return ErrCorruptStore }

// ValidationError names the field that failed a caller-layer precondition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrOrderReceived)
}
