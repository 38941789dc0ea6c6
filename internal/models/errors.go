package models

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers classify failures with errors.Is.
var (
	// ErrValidation marks malformed input: bad email, negative amounts,
	// unknown enum tokens.
	ErrValidation = errors.New("validation error")

	// ErrInvalidArgument marks an unrecognised argument such as a sort
	// criterion. It is a kind of ErrValidation.
	ErrInvalidArgument = fmt.Errorf("invalid argument: %w", ErrValidation)

	// ErrDuplicateKey marks an add with an existing ID, or an email already
	// in use within a role.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound marks an operation on an unknown ID.
	ErrNotFound = errors.New("not found")

	// ErrDataInconsistency marks a stored record whose foreign key does not
	// resolve.
	ErrDataInconsistency = errors.New("data inconsistency")
)

// Validationf returns an ErrValidation with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InvalidArgumentf returns an ErrInvalidArgument with a formatted detail.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound reports an unknown entity of the given kind.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// DuplicateKey reports an ID or unique field already in use.
func DuplicateKey(kind, field, value string) error {
	return fmt.Errorf("%s with %s %q already exists: %w", kind, field, value, ErrDuplicateKey)
}

// Inconsistent reports an unresolved foreign key found while loading.
func Inconsistent(kind, field, id string) error {
	return fmt.Errorf("%s references unknown %s %q: %w", kind, field, id, ErrDataInconsistency)
}
