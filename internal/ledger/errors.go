// Package ledger constructs and validates ledger facts.
//
// Every fact is checked when it is built and again whenever it is
// replaced. Invalid input never produces a partial fact: a constructor
// returns either a complete value or one of the errors below.
package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures. Match them with errors.Is.
var (
	ErrInvalidAmount         = errors.New("ledger: invalid amount")
	ErrSplitMismatch         = errors.New("ledger: split total does not match amount")
	ErrSameParty             = errors.New("ledger: settlement parties must differ")
	ErrDirectionInconsistent = errors.New("ledger: settlement direction inconsistent with balance")
	ErrOverSettlement        = errors.New("ledger: settlement exceeds outstanding balance")
	ErrMissingField          = errors.New("ledger: missing required field")
	ErrDuplicatePeriod       = errors.New("ledger: billing period already paid")
	ErrInactive              = errors.New("ledger: subscription is paused")
)

// ValidationError carries the field that failed along with its sentinel.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Message)
}

// Unwrap exposes the sentinel to errors.Is.
func (e *ValidationError) Unwrap() error { return e.Kind }

func invalid(kind error, field, format string, args ...any) error {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err was caused by caller input and can be
// retried with corrected values.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrSplitMismatch) ||
		errors.Is(err, ErrSameParty) ||
		errors.Is(err, ErrOverSettlement) ||
		errors.Is(err, ErrMissingField)
}
