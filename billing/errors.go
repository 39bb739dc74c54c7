/*
errors.go - Centralized error types for the billing engine

ERROR CATEGORIES:
  1. Lookup errors - Referenced bill does not exist
  2. Validation errors - Strict input checks at the presentation boundary
  3. Store errors - Wrapped database failures, propagated unchanged

Storage failures are never retried; they fail the triggering operation.
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrBillNotFound is returned when a referenced bill doesn't exist.
	ErrBillNotFound = errors.New("bill not found")

	// ErrInvalidBill is returned by strict validation.
	ErrInvalidBill = errors.New("invalid bill")

	// ErrInvalidCycle is returned when a cycle is not "YYYY-MM".
	ErrInvalidCycle = errors.New("invalid cycle")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError names the first field that failed strict validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidBill
}

// NotFoundError carries the missing bill's ID.
type NotFoundError struct {
	ID BillID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("bill %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrBillNotFound
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing bill.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBillNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidBill) || errors.Is(err, ErrInvalidCycle)
}
