package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

func newCabinMock(t *testing.T) (*CabinRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewCabinRepo(db), mock
}

func cabinRows(ids ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "capacity", "rate_cents", "image_url", "is_active", "created_at", "updated_at",
	})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "Cabin", "cozy", 4, 10000, nil, true, now, now)
	}
	return rows
}

func TestFindAvailable(t *testing.T) {
	repo, mock := newCabinMock(t)
	dr, _ := model.ParseDateRange("2026-09-01", "2026-09-05")

	mock.ExpectQuery(`NOT IN`).
		WithArgs(uint64(3), "2026-09-05", "2026-09-01").
		WillReturnRows(cabinRows(1, 4))

	cabins, err := repo.FindAvailable(context.Background(), dr, 3)
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if len(cabins) != 2 || cabins[0].ID != 1 || cabins[1].ID != 4 {
		t.Fatalf("unexpected result: %+v", cabins)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindAvailableEmpty(t *testing.T) {
	repo, mock := newCabinMock(t)
	dr, _ := model.ParseDateRange("2026-09-01", "2026-09-02")

	mock.ExpectQuery(`NOT IN`).
		WithArgs(uint64(2), "2026-09-02", "2026-09-01").
		WillReturnRows(cabinRows())

	cabins, err := repo.FindAvailable(context.Background(), dr, 2)
	if err != nil {
		t.Fatalf("FindAvailable: %v", err)
	}
	if cabins == nil || len(cabins) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", cabins)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newCabinMock(t)

	mock.ExpectQuery(`FROM cabins WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnRows(cabinRows())

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, ErrCabinNotFound) {
		t.Fatalf("err = %v, want ErrCabinNotFound", err)
	}
}

func TestDeleteCabinRestricted(t *testing.T) {
	repo, mock := newCabinMock(t)

	// MySQL refuses to delete a parent row referenced by reservations.
	mock.ExpectExec(`DELETE FROM cabins`).
		WithArgs(uint64(7)).
		WillReturnError(errors.New("Error 1451: Cannot delete or update a parent row"))

	if err := repo.Delete(context.Background(), 7); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestDeleteCabinNotFound(t *testing.T) {
	repo, mock := newCabinMock(t)

	mock.ExpectExec(`DELETE FROM cabins`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 7); !errors.Is(err, ErrCabinNotFound) {
		t.Fatalf("err = %v, want ErrCabinNotFound", err)
	}
}
