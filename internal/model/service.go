package model

import "time"

// Service is an add-on billed per night on top of a cabin's rate
// (e.g. breakfast or a hot tub).  Rows live in the `services` table and
// share the cabin lifecycle shape: immutable identity, mutable rate and
// active flag, never deleted while referenced by a reservation line item.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the service.
//  Description – free-form description.
//  RateCents   – nightly rate in cents, >= 0.
//  IsActive    – whether the service can be attached to new bookings.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Service struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	RateCents   uint64    `json:"rate_cents"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
