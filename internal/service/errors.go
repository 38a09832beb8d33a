// Package service implements the business core: the shift lifecycle
// state machine, the payroll calculator and the risk scanner. All
// operations return discriminated errors from the taxonomy below so
// handlers can map them to specific HTTP responses instead of a
// generic 500.
package service

import "errors"

// ErrShiftNotFound: no shift with the given id exists.
var ErrShiftNotFound = errors.New("shift not found")

// ErrShiftConflict: the shift was not in the state the transition
// requires, most commonly a lost claim race. The caller should
// refresh and re-render rather than retry.
var ErrShiftConflict = errors.New("shift is not in the required state")

// ErrNotAuthorized: the actor may not perform this operation, either a
// wrong role or a worker touching a shift assigned to someone else. Always
// checked before any state mutation.
var ErrNotAuthorized = errors.New("not authorized")

// ValidationError carries a user-facing message for rejected input:
// a care sheet leaking contact details, a missing GPS fix, an override
// without a reason. It is surfaced at the point of entry and never
// auto-corrected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a validation failure and returns
// its message for rendering.
func IsValidation(err error) (string, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message, true
	}
	return "", false
}
