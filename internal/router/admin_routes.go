package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/handler"    // admin handlers
	"github.com/iliyamo/cabin-reservation/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers ADMIN-scoped catalog management under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, cab *handler.AdminCabinHandler, svc *handler.AdminServiceHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Cabins ----
	// Listing cabins is handled by the public browse API; admin routes
	// cover only mutation.
	g.POST("/cabins", cab.CreateCabin)
	g.PUT("/cabins/:id", cab.UpdateCabin)
	g.PATCH("/cabins/:id", cab.UpdateCabin) // allow partial/semantic updates via PATCH as well
	g.DELETE("/cabins/:id", cab.DeleteCabin)

	// ---- Services ----
	g.GET("/services", svc.ListServices) // includes inactive entries
	g.POST("/services", svc.CreateService)
	g.PUT("/services/:id", svc.UpdateService)
	g.PATCH("/services/:id", svc.UpdateService)
	g.POST("/services/:id/toggle", svc.ToggleService)
	g.DELETE("/services/:id", svc.DeleteService)
}
