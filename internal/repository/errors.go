// Package repository defines error types that are reused across
// multiple repositories. These sentinel values let higher layers
// distinguish failure scenarios: ErrNotFound maps to 404, ErrConflict
// signals a guarded update that found the record in a different status
// than expected (e.g. a lost claim race) and maps to 409, and
// ErrForbidden maps to 403.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional update matched no rows
// because the record was not in the expected status. Callers should
// treat this as a definitive "someone else got there first" and
// refresh rather than retry blindly.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// isDuplicateKey reports whether the database rejected an insert for
// violating a unique key (MySQL error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
