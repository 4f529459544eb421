package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/repository"
)

// AdminCabinHandler owns cabin management. Every route behind it sits
// behind the ADMIN role middleware.
type AdminCabinHandler struct {
	Cabins *repository.CabinRepo
}

func NewAdminCabinHandler(cabins *repository.CabinRepo) *AdminCabinHandler {
	return &AdminCabinHandler{Cabins: cabins}
}

type cabinReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Capacity    uint32  `json:"capacity"`
	RateCents   uint64  `json:"rate_cents"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}

func (req *cabinReq) validate() (string, bool) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name required", false
	}
	if req.Capacity == 0 {
		return "capacity must be at least 1", false
	}
	// A zero rate is legal: free stays price at services only.
	return "", true
}

// CreateCabin inserts a new cabin. New cabins are active unless the
// request says otherwise.
// POST /v1/admin/cabins
func (h *AdminCabinHandler) CreateCabin(c echo.Context) error {
	var req cabinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	cab := &model.Cabin{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Capacity:    req.Capacity,
		RateCents:   req.RateCents,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		cab.IsActive = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cabins.Create(ctx, cab); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create cabin failed"})
	}
	return c.JSON(http.StatusCreated, cab)
}

// UpdateCabin replaces the mutable fields of a cabin.
// PUT /v1/admin/cabins/:id
func (h *AdminCabinHandler) UpdateCabin(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	var req cabinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cab, err := h.Cabins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cab.Name = req.Name
	cab.Description = strings.TrimSpace(req.Description)
	cab.Capacity = req.Capacity
	cab.RateCents = req.RateCents
	cab.ImageURL = req.ImageURL
	if req.IsActive != nil {
		cab.IsActive = *req.IsActive
	}

	if err := h.Cabins.Update(ctx, cab); err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cabin failed"})
	}
	return c.JSON(http.StatusOK, cab)
}

// DeleteCabin removes a cabin. Cabins referenced by reservations are
// protected by the FK and answer 409; deactivate them instead.
// DELETE /v1/admin/cabins/:id
func (h *AdminCabinHandler) DeleteCabin(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cabins.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCabinNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "cabin has reservations; deactivate it instead"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete cabin failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
