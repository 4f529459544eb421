package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/repository"
)

// CatalogHandler serves the public, unauthenticated browse surface:
// cabin listings, featured cabins, extra services and availability search.
type CatalogHandler struct {
	Cabins   *repository.CabinRepo
	Services *repository.ServiceRepo
}

func NewCatalogHandler(cabins *repository.CabinRepo, services *repository.ServiceRepo) *CatalogHandler {
	return &CatalogHandler{Cabins: cabins, Services: services}
}

// ListCabins returns every active cabin.
// GET /v1/cabins
func (h *CatalogHandler) ListCabins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cabins, err := h.Cabins.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cabins": cabins})
}

// FeaturedCabins returns the newest active cabins for the landing page.
// GET /v1/cabins/featured
func (h *CatalogHandler) FeaturedCabins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cabins, err := h.Cabins.ListFeatured(ctx, 2)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cabins": cabins})
}

// GetCabin returns a single cabin by id.
// GET /v1/cabins/:id
func (h *CatalogHandler) GetCabin(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cabin, err := h.Cabins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cabin)
}

// ListServices returns every active extra service that can be attached
// to a reservation.
// GET /v1/services
func (h *CatalogHandler) ListServices(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	services, err := h.Services.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"services": services})
}

// SearchAvailability lists active cabins that are free for the whole
// requested stay and large enough for the party.
//
// GET /v1/cabins/available?start=2026-09-01&end=2026-09-05&adults=2&children=1
//
// The answer is a snapshot: a cabin shown here can still be lost to a
// concurrent booking, only the reservation transaction is authoritative.
func (h *CatalogHandler) SearchAvailability(c echo.Context) error {
	dr, err := model.ParseDateRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}
	if err := dr.ValidateSearch(time.Now()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// Parse at the same width as a cabin's capacity so out-of-range
	// counts fail validation instead of being silently narrowed.
	adults, err := strconv.ParseUint(c.QueryParam("adults"), 10, 32)
	if err != nil || adults < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "adults must be at least 1"})
	}
	var children uint64
	if raw := c.QueryParam("children"); raw != "" {
		children, err = strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid children"})
		}
	}
	occupancy := adults + children

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cabins, err := h.Cabins.FindAvailable(ctx, dr, occupancy)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"start":  dr.Start.Format(model.DateLayout),
		"end":    dr.End.Format(model.DateLayout),
		"nights": dr.Nights(),
		"cabins": cabins,
	})
}
