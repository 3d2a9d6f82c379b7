// Package repository defines error types that are reused across
// multiple repositories. These sentinel values let higher layers such
// as handlers distinguish between failure scenarios: ErrNotFound maps
// to a missing referenced row (order, job, batch, item,
// transformation), ErrConflict to a violated state-machine
// precondition (duplicate job, wrong job status for a transition,
// re-linking a transformation result), and ErrInvalidArgument to input
// rejected before any write.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as allocating an order that already has a
// non-cancelled picking job or accepting a job assigned to someone
// else. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidArgument is returned when input is missing or out of
// range and is caught before any write happens. Handlers should
// translate this into an HTTP 400 response.
var ErrInvalidArgument = errors.New("invalid argument")
