package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/handler"
	"github.com/iliyamo/cabin-reservation/internal/middleware"
)

// RegisterReservations registers the booking endpoints under /v1.  All
// routes require a valid JWT; both roles are accepted because admins may
// also book stays, and the list endpoint widens to every reservation when
// the caller carries the ADMIN role.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "CUSTOMER"),
	)
	g.POST("/reservations", h.Create)
	g.GET("/reservations", h.List)
	g.GET("/reservations/:id", h.Get)
	// Cancellation is a status transition, not a delete: history stays and
	// the dates free up for new bookings.
	g.POST("/reservations/:id/cancel", h.Cancel)
}
