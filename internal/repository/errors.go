// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrValidation marks a submission that was rejected before
// any write happened, while ErrInvalidTransition signals a status
// change that the entry state machine does not allow (e.g. serving
// an already served entry).
package repository

import "errors"

// ErrNotFound is returned when an entry with the requested id does
// not exist in the queried table. Handlers should translate this
// into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when submitted fields fail validation.
// It is always wrapped with a human-readable reason that is safe to
// surface verbatim to the submitter. No write has happened when this
// error is returned.
var ErrValidation = errors.New("validation failed")

// ErrInvalidTransition is returned when a status update would move an
// entry along an edge that the state machine does not have, such as
// out of the served state. Handlers should translate this into an
// HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrForbidden is returned when the caller attempts a staff operation
// without being on the admin allowlist. Handlers should translate
// this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
