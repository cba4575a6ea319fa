package negotiation

import "errors"

var (
	// ErrValidation indicates the submitted payload failed domain validation.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition indicates an operation was attempted from a state
	// or role that does not permit it. Fails closed with no side effect.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotFound indicates the collaboration or counter does not exist.
	ErrNotFound = errors.New("collaboration not found")

	// ErrCounterNotFound indicates the referenced counter does not exist.
	ErrCounterNotFound = errors.New("counter not found")

	// ErrNotAuthorized indicates the caller is not the required actor.
	ErrNotAuthorized = errors.New("not authorized for this action")

	// ErrVersionConflict indicates a concurrent write won the version check.
	ErrVersionConflict = errors.New("collaboration was modified concurrently")

	// ErrPartyUnavailable indicates a referenced party is missing or suspended.
	ErrPartyUnavailable = errors.New("party does not exist or is not active")
)
