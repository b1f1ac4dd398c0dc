package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("caller does not own this notification")
	ErrInvalidKind      = errors.New("invalid kind: must be comment, like, or system")
	ErrInvalidRecipient = errors.New("recipient must not be empty")
	ErrInvalidTarget    = errors.New("target must not be empty")
	ErrInvalidContent   = errors.New("content must be at most 2048 characters")
	ErrInvalidEmail     = errors.New("email address is not valid")

	// ErrQueueEmpty is the non-blocking dequeue sentinel: the queue had no
	// item at the moment of the pop. It is an expected condition, not a fault.
	ErrQueueEmpty = errors.New("task queue is empty")

	// ErrMalformedTask means a popped payload could not be decoded.
	// Such items are logged and dropped, never retried.
	ErrMalformedTask = errors.New("malformed task payload")
)
