package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cabin-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/cabin-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session.  Each of these
	// handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access issues a new
	// access token without rotating.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts a
	// JSON body containing a `refresh_token` and invalidates that token,
	// or a bearer token to revoke every session of the caller.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.  All handlers registered
	// on this group execute the JWTAuth middleware before being invoked.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Any authenticated role may hit these endpoints; the middleware
	// rejects requests with missing or unknown roles.
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)

	// Alias so clients can call either /v1/auth/logout or /v1/logout.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.  These routes
// return catalog data for guests and apply no JWT or role middleware.  The
// availability search intentionally bypasses the response cache: its answer
// changes with every booking.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler) {
	// Fixed paths before /:id so Echo does not treat them as cabin ids.
	e.GET("/v1/cabins/featured", p.FeaturedCabins)
	e.GET("/v1/cabins/available", p.SearchAvailability)
	e.GET("/v1/cabins", p.ListCabins)
	e.GET("/v1/cabins/:id", p.GetCabin)
	e.GET("/v1/services", p.ListServices)
}
