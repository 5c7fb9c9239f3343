package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when the requested order status is not
// reachable from the current one. The order is left unmodified.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNoPartnerAvailable is returned by assignment when no partner is idle.
var ErrNoPartnerAvailable = errors.New("no delivery partner available")

// ErrAssignmentPartialFailure means the partner was marked busy but the order
// could not be updated. The sweeper frees the partner at its deadline.
var ErrAssignmentPartialFailure = errors.New("assignment partially applied")

// ErrAlreadyCompleted marks a completion that lost the race to another trigger.
// It is an outcome, not a failure.
var ErrAlreadyCompleted = errors.New("delivery already completed")

// ErrStoreUnavailable wraps transient persistence failures.
var ErrStoreUnavailable = errors.New("store unavailable")
