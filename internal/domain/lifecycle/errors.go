package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the
	// current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)
