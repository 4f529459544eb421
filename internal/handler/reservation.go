package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/pricing"
	"github.com/iliyamo/cabin-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/cabin-reservation/internal/service"

	q "github.com/iliyamo/cabin-reservation/internal/queue"
)

// ReservationHandler runs the booking and cancellation transactions and
// serves reservation listings.
type ReservationHandler struct {
	Cabins       *repository.CabinRepo
	Services     *repository.ServiceRepo
	Reservations *repository.ReservationRepo
}

func NewReservationHandler(cabins *repository.CabinRepo, services *repository.ServiceRepo, reservations *repository.ReservationRepo) *ReservationHandler {
	return &ReservationHandler{Cabins: cabins, Services: services, Reservations: reservations}
}

type createReservationReq struct {
	CabinID    uint64   `json:"cabin_id"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Adults     uint32   `json:"adults"`
	Children   uint32   `json:"children"`
	ServiceIDs []uint64 `json:"service_ids"`
}

// Create books a cabin for the requested stay. The whole operation is
// one transaction:
//
//  1. lock the cabin row (SELECT ... FOR UPDATE) — this serialises
//     concurrent bookings of the same cabin,
//  2. check the party fits the cabin,
//  3. load the requested services, all of which must be active,
//  4. re-check for overlapping reservations under the lock,
//  5. price the stay and insert the header plus line items,
//  6. commit.
//
// If anything fails the transaction rolls back and nothing is written.
// The event publish happens after commit and never affects the outcome.
// POST /v1/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CabinID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cabin_id required"})
	}
	if req.Adults < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "adults must be at least 1"})
	}
	dr, err := model.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}
	if err := dr.ValidateSearch(time.Now()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	seen := make(map[uint64]bool, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if id == 0 || seen[id] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_ids must be unique and positive"})
		}
		seen[id] = true
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Row lock on the cabin: concurrent bookings of the same cabin
	// queue up here, so the overlap check below sees every committed
	// reservation.
	cabin, err := h.Cabins.GetActiveForUpdateTx(ctx, tx, req.CabinID)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Widen before adding: the uint32 sum can wrap for large parties.
	if uint64(req.Adults)+uint64(req.Children) > uint64(cabin.Capacity) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": repository.ErrCapacityExceeded.Error()})
	}

	services, err := h.Services.GetActiveByIDsTx(ctx, tx, req.ServiceIDs)
	if err != nil {
		var unknown *repository.UnknownServiceError
		if errors.As(err, &unknown) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": unknown.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	overlap, err := h.Reservations.OverlapExistsTx(ctx, tx, cabin.ID, dr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if overlap {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cabin is already reserved for those dates"})
	}

	total, err := pricing.Total(*cabin, services, dr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}

	res := &model.Reservation{
		UserID:     userID,
		CabinID:    cabin.ID,
		Range:      dr,
		Adults:     req.Adults,
		Children:   req.Children,
		TotalCents: total,
		Status:     model.StatusPending,
		ServiceIDs: req.ServiceIDs,
	}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	if err := h.Reservations.AddServicesTx(ctx, tx, res.ID, services); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	// Best effort: the booking is durable regardless of broker health.
	_ = queue_publisher.PublishReservationEvent(ctx, q.ReservationEvent{
		Kind:          q.EventReservationCreated,
		ReservationID: res.ID,
		UserID:        res.UserID,
		CabinID:       res.CabinID,
		CabinName:     cabin.Name,
		StartDate:     dr.Start.Format(model.DateLayout),
		EndDate:       dr.End.Format(model.DateLayout),
		Adults:        res.Adults,
		Children:      res.Children,
		ServiceIDs:    res.ServiceIDs,
		TotalCents:    res.TotalCents,
		Status:        res.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": res,
		"start_date":  dr.Start.Format(model.DateLayout),
		"end_date":    dr.End.Format(model.DateLayout),
		"nights":      dr.Nights(),
	})
}

// List returns the caller's reservations, newest first. Admins get every
// reservation in the system.
// GET /v1/reservations
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var details []repository.ReservationDetail
	if isAdmin(c) {
		details, err = h.Reservations.ListAll(ctx)
	} else {
		details, err = h.Reservations.ListByUser(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// Get returns one reservation. Customers only see their own.
// GET /v1/reservations/:id
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": repository.ErrForbidden.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation": res,
		"start_date":  res.Range.Start.Format(model.DateLayout),
		"end_date":    res.Range.End.Format(model.DateLayout),
		"nights":      res.Range.Nights(),
	})
}

// Cancel flips a reservation to CANCELLED. The row is locked first so a
// concurrent cancel of the same reservation sees the terminal status and
// fails the transition check. The dates are freed the moment the commit
// lands, because the overlap predicate skips cancelled rows.
// POST /v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": repository.ErrForbidden.Error()})
	}
	if !model.CanCancel(res.Status) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": repository.ErrInvalidState.Error()})
	}

	if err := h.Reservations.CancelTx(ctx, tx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = queue_publisher.PublishReservationEvent(ctx, q.ReservationEvent{
		Kind:          q.EventReservationCancelled,
		ReservationID: res.ID,
		UserID:        res.UserID,
		CabinID:       res.CabinID,
		StartDate:     res.Range.Start.Format(model.DateLayout),
		EndDate:       res.Range.End.Format(model.DateLayout),
		Adults:        res.Adults,
		Children:      res.Children,
		ServiceIDs:    res.ServiceIDs,
		TotalCents:    res.TotalCents,
		Status:        model.StatusCancelled,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "status": model.StatusCancelled})
}
