package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed or out-of-range input,
	// rejected before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an entity is not in a state that
	// permits the requested operation. Callers should refresh and retry
	// with corrected intent, not repeat the same request.
	ErrConflict = errors.New("state conflict")

	// ErrBlocked is returned when an open critical issue prevents a
	// vehicle assignment.
	ErrBlocked = errors.New("assignment blocked")

	// ErrInsufficientBalance is a ledger-specific specialization of
	// ErrConflict: approving the expense would drive the float balance
	// below zero.
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient float balance", ErrConflict)
)
