// Package queue defines message payloads exchanged over the message broker.
package queue

// EventReservationCreated and EventReservationCancelled are the values
// of ReservationEvent.Kind.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a booking or cancellation commits.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type ReservationEvent struct {
	Kind          string   `json:"kind"`
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	CabinID       uint64   `json:"cabin_id"`
	CabinName     string   `json:"cabin_name"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Adults        uint32   `json:"adults"`
	Children      uint32   `json:"children"`
	ServiceIDs    []uint64 `json:"service_ids"`
	TotalCents    uint64   `json:"total_cents"`
	Status        string   `json:"status"`
	OccurredAt    string   `json:"occurred_at"`
}
