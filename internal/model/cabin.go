package model

import "time"

// Cabin represents a bookable lodging unit as stored in the `cabins`
// table.  Capacity and nightly rate are administrative attributes; the
// identity of a cabin never changes once created.  Cabins referenced by
// reservations are never physically deleted (enforced by a RESTRICT
// foreign key), only deactivated.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the cabin.
//  Description – free-form description.
//  Capacity    – maximum occupancy (adults + children), always > 0.
//  RateCents   – nightly rate in cents, >= 0.
//  ImageURL    – optional picture URL (nullable; presentation concern).
//  IsActive    – whether the cabin can appear in searches and bookings.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Cabin struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    uint32    `json:"capacity"`
	RateCents   uint64    `json:"rate_cents"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
