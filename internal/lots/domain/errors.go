package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLotNotFound     = errors.New("lot not found")
	ErrProjectNotFound = errors.New("project not found")

	// ErrAdminRequired is returned whenever a privileged command is
	// attempted without administrator role, including when the role
	// lookup itself fails.
	ErrAdminRequired = errors.New("administrator role required")
)

// ValidationError marks a command rejected before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for the named field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps a failed read or write against the database so
// callers can distinguish remote failures from local ones. The
// underlying error is preserved verbatim.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError, passing nil through.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStore reports whether err is a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
