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

// AdminServiceHandler manages the catalog of extra services.
type AdminServiceHandler struct {
	Services *repository.ServiceRepo
}

func NewAdminServiceHandler(services *repository.ServiceRepo) *AdminServiceHandler {
	return &AdminServiceHandler{Services: services}
}

type serviceReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RateCents   uint64 `json:"rate_cents"`
}

// ListServices shows every service, active and inactive.
// GET /v1/admin/services
func (h *AdminServiceHandler) ListServices(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	services, err := h.Services.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"services": services})
}

// CreateService inserts a new per-night service, active from the start.
// POST /v1/admin/services
func (h *AdminServiceHandler) CreateService(c echo.Context) error {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	svc := &model.Service{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		RateCents:   req.RateCents,
		IsActive:    true,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Services.Create(ctx, svc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
	}
	return c.JSON(http.StatusCreated, svc)
}

// UpdateService replaces name, description and rate. Rate changes only
// affect future reservations; existing line items keep their snapshot.
// PUT /v1/admin/services/:id
func (h *AdminServiceHandler) UpdateService(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	svc, err := h.Services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	svc.Name = req.Name
	svc.Description = strings.TrimSpace(req.Description)
	svc.RateCents = req.RateCents

	if err := h.Services.Update(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update service failed"})
	}
	return c.JSON(http.StatusOK, svc)
}

// ToggleService flips a service between active and inactive. Inactive
// services stay on past reservations but cannot join new ones.
// POST /v1/admin/services/:id/toggle
func (h *AdminServiceHandler) ToggleService(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	svc, err := h.Services.ToggleActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle service failed"})
	}
	return c.JSON(http.StatusOK, svc)
}

// DeleteService removes a service that no reservation references.
// DELETE /v1/admin/services/:id
func (h *AdminServiceHandler) DeleteService(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Services.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrServiceNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "service is referenced by reservations; deactivate it instead"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete service failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
