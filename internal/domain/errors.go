package domain

import "errors"

var (
	// ErrIllegalState is returned when a tool is invoked at a nesting level
	// that forbids it. Wraps carry a remediation hint for the caller.
	ErrIllegalState = errors.New("you are in an illegal state")
	// ErrInvalidTarget is returned when a save destination fails validation,
	// before any builder call or I/O is attempted.
	ErrInvalidTarget = errors.New("invalid save target")
	// ErrIllegalTransition indicates a tracker mutation was attempted outside
	// its precondition. It is a programming-contract violation, not a
	// user-facing condition.
	ErrIllegalTransition = errors.New("illegal level transition")
)
