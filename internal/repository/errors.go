// Package repository defines error types that are reused across the
// memory and MySQL repositories.  These sentinel values allow higher
// layers such as the seat store and the handlers to distinguish between
// different failure scenarios.  For example, ErrNotFound indicates that a
// lookup matched no rows, while ErrConflict signals that a write lost a
// race against an existing record (e.g. assigning a seat that the
// database already shows as occupied).
package repository

import "errors"

// ErrNotFound is returned when a lookup by key yields no rows.
var ErrNotFound = errors.New("not found")

// ErrPassengerNotFound is returned when no passenger carries the
// requested passport number.  It wraps ErrNotFound so callers can test
// for either.
var ErrPassengerNotFound = notFound("passenger not found")

// ErrBoardingPassNotFound is returned when a passenger has no boarding
// pass yet.
var ErrBoardingPassNotFound = notFound("boarding pass not found")

// ErrConflict is returned when a write cannot be applied because the
// stored state no longer matches what the caller expected.  Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

type notFoundError struct{ msg string }

func notFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string        { return e.msg }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }
