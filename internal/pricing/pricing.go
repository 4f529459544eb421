// Package pricing computes stay totals.  The calculation is a pure
// function of its inputs so it can run inside or outside a database
// transaction without side effects.
package pricing

import (
	"github.com/iliyamo/cabin-reservation/internal/model"
)

// Total returns the price in cents for staying in the given cabin over
// the given range with the given add-on services:
//
//	nights × cabinRate + Σ nights × serviceRate
//
// Every service is billed per night, like the cabin itself.  The range
// must cover at least one night, otherwise model.ErrInvalidRange is
// returned.  Resolution of service ids to active services is the
// caller's job; by the time a Service value reaches this function it is
// assumed valid.
func Total(cabin model.Cabin, services []model.Service, dr model.DateRange) (uint64, error) {
	nights := dr.Nights()
	if nights < 1 {
		return 0, model.ErrInvalidRange
	}
	n := uint64(nights)
	total := n * cabin.RateCents
	for _, s := range services {
		total += n * s.RateCents
	}
	return total, nil
}
