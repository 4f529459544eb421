// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to act on a reservation owned by someone else, while
// ErrConflict signals that an operation cannot proceed because of
// conflicting state (an overlapping reservation on the same cabin, or
// deleting a cabin that still has reservations).
package repository

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as booking a cabin whose dates overlap an
// existing non-cancelled reservation, or deleting a cabin that is
// still referenced by reservations. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when a lifecycle transition is not legal
// from the current status, e.g. cancelling an already cancelled
// reservation. CANCELLED is terminal.
var ErrInvalidState = errors.New("invalid state transition")

// ErrCapacityExceeded is returned when the requested occupancy
// (adults + children) exceeds the cabin's capacity. Searches filter
// such cabins out; direct bookings surface the error.
var ErrCapacityExceeded = errors.New("occupancy exceeds cabin capacity")

// ErrCabinNotFound is returned when a cabin id does not resolve to an
// existing (or, where required, active) cabin.
var ErrCabinNotFound = errors.New("cabin not found")

// ErrServiceNotFound is returned when a service id does not resolve to
// an active service. The wrapping UnknownServiceError carries the id.
var ErrServiceNotFound = errors.New("service not found")

// ErrReservationNotFound is returned when a reservation id does not
// resolve to an existing reservation.
var ErrReservationNotFound = errors.New("reservation not found")

// UnknownServiceError reports the first service id that failed to
// resolve while building a reservation. It unwraps to
// ErrServiceNotFound so callers can match with errors.Is.
type UnknownServiceError struct {
	ServiceID uint64
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("service %d not found", e.ServiceID)
}

func (e *UnknownServiceError) Unwrap() error { return ErrServiceNotFound }
