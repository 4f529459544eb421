package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/repository"
)

func adminCtx(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	c.Set("role", model.RoleAdmin)
	return c, rec
}

func cabinRows(id uint64, name string, capacity uint32, rateCents uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "capacity", "rate_cents", "image_url", "is_active", "created_at", "updated_at",
	}).AddRow(id, name, "", capacity, rateCents, nil, true, now, now)
}

func serviceRows(id uint64, name string, rateCents uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "rate_cents", "is_active", "created_at", "updated_at",
	}).AddRow(id, name, "", rateCents, true, now, now)
}

// A zero nightly rate is a valid price, not a missing one: promotional
// cabins charge for services only.
func TestCreateCabinZeroRate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	h := NewAdminCabinHandler(repository.NewCabinRepo(db))

	mock.ExpectExec(`INSERT INTO cabins`).
		WithArgs("Day-Use Deck", "", 2, 0, nil, true).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`FROM cabins WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(cabinRows(7, "Day-Use Deck", 2, 0))

	c, rec := adminCtx(t, http.MethodPost, "/v1/admin/cabins",
		`{"name":"Day-Use Deck","capacity":2,"rate_cents":0}`)
	if err := h.CreateCabin(c); err != nil {
		t.Fatalf("CreateCabin: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateServiceZeroRate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	h := NewAdminServiceHandler(repository.NewServiceRepo(db))

	mock.ExpectExec(`INSERT INTO services`).
		WithArgs("Parking", "", 0, true).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(`FROM services WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(serviceRows(5, "Parking", 0))

	c, rec := adminCtx(t, http.MethodPost, "/v1/admin/services",
		`{"name":"Parking","rate_cents":0}`)
	if err := h.CreateService(c); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateServiceToZeroRate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	h := NewAdminServiceHandler(repository.NewServiceRepo(db))

	mock.ExpectQuery(`FROM services WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(serviceRows(5, "Parking", 1500))
	mock.ExpectExec(`UPDATE services`).
		WithArgs("Parking", "", 0, true, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM services WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(serviceRows(5, "Parking", 0))

	c, rec := adminCtx(t, http.MethodPut, "/v1/admin/services/5",
		`{"name":"Parking","rate_cents":0}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.UpdateService(c); err != nil {
		t.Fatalf("UpdateService: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateCabinValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	h := NewAdminCabinHandler(repository.NewCabinRepo(db))

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"capacity":2,"rate_cents":1000}`},
		{"zero capacity", `{"name":"Lakeside","capacity":0,"rate_cents":1000}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := adminCtx(t, http.MethodPost, "/v1/admin/cabins", tc.body)
			if err := h.CreateCabin(c); err != nil {
				t.Fatalf("CreateCabin: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
