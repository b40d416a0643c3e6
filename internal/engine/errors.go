// Package engine implements the reservation lifecycle and capacity
// rules: slot normalization and availability, per-mode capacity
// limits, the status state machine, viewer access resolution and the
// participant confirmation ledger. The package is pure logic; it
// never touches the database or the network. Persistence re-validates
// the racy checks (slot uniqueness, capacity at write time) and maps
// its conflicts back onto the sentinel errors defined here.
package engine

import "errors"

// ErrInvalidTransition is returned when a status change is requested
// from a terminal state (cancelled, finished, no-show) or to a status
// the state machine does not allow. The reservation is left
// unchanged. Handlers translate this into an HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrCapacityViolation is returned when max_participants would be set
// below the current participant count.
var ErrCapacityViolation = errors.New("capacity below participant count")

// ErrCapacityExceeded is returned when a join or confirmation would
// push the participant list past the effective capacity. Handlers
// translate this into an HTTP 409 so the caller can suggest picking
// another slot or accepting the full state.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrSlotConflict is returned when a create or reschedule loses the
// race for a (date, slot_time) slot. The persistence layer detects
// the duplicate-key failure and surfaces this sentinel; callers
// should retry with a different slot.
var ErrSlotConflict = errors.New("slot already booked")

// ErrAccessDenied is returned when a viewer fails an access check.
// Handlers translate this into an HTTP 403 response.
var ErrAccessDenied = errors.New("access denied")

// ErrNotFound is returned when a reservation or participant the
// operation refers to does not exist. Handlers translate this into an
// HTTP 404 response.
var ErrNotFound = errors.New("not found")
