package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

func cancelCtx(t *testing.T, id string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations/"+id+"/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations/:id/cancel")
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func reservationRow(id, userID uint64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "cabin_id", "start_date", "end_date",
		"adults", "children", "total_cents", "status", "created_at", "updated_at",
	}).AddRow(id, userID, 3, now.AddDate(0, 0, 7), now.AddDate(0, 0, 10), 2, 0, 30000, status, now, now)
}

func lineItemRows(serviceIDs ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"service_id"})
	for _, id := range serviceIDs {
		rows.AddRow(id)
	}
	return rows
}

func TestCancelReservation(t *testing.T) {
	f := newBookingFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(reservationRow(42, 8, model.StatusPending))
	f.mock.ExpectQuery(`FROM reservation_services`).
		WithArgs(uint64(42)).
		WillReturnRows(lineItemRows(2, 5))
	f.mock.ExpectExec(`SET status = 'CANCELLED'`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	c, rec := cancelCtx(t, "42", 8, model.RoleCustomer)
	if err := f.handler.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelReservationAlreadyCancelled(t *testing.T) {
	f := newBookingFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(reservationRow(42, 8, model.StatusCancelled))
	f.mock.ExpectQuery(`FROM reservation_services`).
		WithArgs(uint64(42)).
		WillReturnRows(lineItemRows())
	f.mock.ExpectRollback()

	c, rec := cancelCtx(t, "42", 8, model.RoleCustomer)
	if err := f.handler.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelReservationForbidden(t *testing.T) {
	f := newBookingFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(reservationRow(42, 8, model.StatusPending))
	f.mock.ExpectQuery(`FROM reservation_services`).
		WithArgs(uint64(42)).
		WillReturnRows(lineItemRows())
	f.mock.ExpectRollback()

	// User 9 does not own reservation 42 and is not an admin.
	c, rec := cancelCtx(t, "42", 9, model.RoleCustomer)
	if err := f.handler.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
}

func TestCancelReservationAdminOverride(t *testing.T) {
	f := newBookingFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(reservationRow(42, 8, model.StatusConfirmed))
	f.mock.ExpectQuery(`FROM reservation_services`).
		WithArgs(uint64(42)).
		WillReturnRows(lineItemRows(9))
	f.mock.ExpectExec(`SET status = 'CANCELLED'`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	// Admin 1 cancels a confirmed reservation owned by user 8.
	c, rec := cancelCtx(t, "42", 1, model.RoleAdmin)
	if err := f.handler.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelReservationNotFound(t *testing.T) {
	f := newBookingFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "cabin_id", "start_date", "end_date",
			"adults", "children", "total_cents", "status", "created_at", "updated_at",
		}))
	f.mock.ExpectRollback()

	c, rec := cancelCtx(t, "404", 8, model.RoleCustomer)
	if err := f.handler.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}
