package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when a transition is not allowed
	// from the current state.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrGuardFailed is returned when every candidate transition for a
	// trigger has a failing guard condition.
	ErrGuardFailed = errors.New("transition guard failed")
)
