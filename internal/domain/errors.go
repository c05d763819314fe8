package domain

import "errors"

var (
	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup for an unknown request, quote, entry or notification.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks an actor operating on a resource it does not own.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPreconditionFailed marks an operation whose business preconditions do not hold,
	// e.g. a quote submitted without a processed queue entry.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrConflict marks an operation that lost a race against a concurrent state change.
	ErrConflict = errors.New("conflict")
	// ErrRateLimited marks a submission rejected by the per-seller rate limiter.
	ErrRateLimited = errors.New("rate limited")
)
