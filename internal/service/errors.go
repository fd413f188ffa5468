// Package service holds the queue's core flows: admission through the
// access gate, mirror synchronization, position resolution and staff
// actions. Services accept narrow store interfaces so they can be
// exercised against fakes; the sql-backed repositories satisfy them.
package service

import "errors"

// ErrAccessDenied is returned when admission is refused because the
// submitted session code is missing or wrong. Handlers surface it as
// a single generic message and never say which of the two it was.
var ErrAccessDenied = errors.New("access denied")

// ErrVerifyUnavailable is returned when the access code could not be
// read at all. The gate fails closed: nobody is admitted while code
// verification is down, and the caller is told to retry rather than
// told the code was wrong.
var ErrVerifyUnavailable = errors.New("code verification unavailable")
