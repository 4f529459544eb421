package model

import "time"

// Reservation statuses.  CANCELLED is terminal; the transition from
// PENDING to CONFIRMED belongs to an external confirmation workflow and
// has no endpoint in this service.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// CanCancel reports whether a reservation in the given status may be
// cancelled.  Only PENDING and CONFIRMED reservations qualify;
// cancelling twice is an invalid transition.
func CanCancel(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// Reservation records a user's stay in a cabin over a half-open date
// range together with the total charged and the chosen add-on services.
// It aggregates its line items in a single transaction and is never
// deleted: cancellation only flips the status, so history is retained
// and the row drops out of future overlap checks.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who made the reservation.
//  CabinID    – cabin being reserved.
//  Range      – stay interval [start, end).
//  Adults     – adult guests, always > 0.
//  Children   – child guests, >= 0.
//  TotalCents – total price in cents for the stay plus services.
//  Status     – PENDING, CONFIRMED or CANCELLED.
//  ServiceIDs – ids of the add-on services booked with the stay.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	CabinID    uint64    `json:"cabin_id"`
	Range      DateRange `json:"-"`
	Adults     uint32    `json:"adults"`
	Children   uint32    `json:"children"`
	TotalCents uint64    `json:"total_cents"`
	Status     string    `json:"status"`
	ServiceIDs []uint64  `json:"service_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReservationService links a reservation to one add-on service.  The
// nightly rate is snapshotted at booking time so later catalog edits do
// not rewrite history.  Rows are destroyed with their reservation
// (ON DELETE CASCADE), never shared between reservations.
type ReservationService struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	ServiceID     uint64    `json:"service_id"`
	RateCents     uint64    `json:"rate_cents"`
	CreatedAt     time.Time `json:"created_at"`
}
