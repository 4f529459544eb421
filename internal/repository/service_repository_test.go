package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func serviceRows(ids ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "rate_cents", "is_active", "created_at", "updated_at",
	})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "Breakfast", "", 1500, true, now, now)
	}
	return rows
}

func TestGetActiveByIDsTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewServiceRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM services`).
		WithArgs(uint64(2), uint64(1)).
		WillReturnRows(serviceRows(1, 2))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	services, err := repo.GetActiveByIDsTx(context.Background(), tx, []uint64{2, 1})
	if err != nil {
		t.Fatalf("GetActiveByIDsTx: %v", err)
	}
	// Result order follows the requested ids, not the row order.
	if len(services) != 2 || services[0].ID != 2 || services[1].ID != 1 {
		t.Fatalf("unexpected order: %+v", services)
	}
}

func TestGetActiveByIDsTxUnknownService(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewServiceRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM services`).
		WithArgs(uint64(1), uint64(7)).
		WillReturnRows(serviceRows(1)) // id 7 is inactive or absent
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	_, err = repo.GetActiveByIDsTx(context.Background(), tx, []uint64{1, 7})
	var unknown *UnknownServiceError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownServiceError", err)
	}
	if unknown.ServiceID != 7 {
		t.Fatalf("ServiceID = %d, want 7", unknown.ServiceID)
	}
	if !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("UnknownServiceError must unwrap to ErrServiceNotFound")
	}
}

func TestGetActiveByIDsTxEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewServiceRepo(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	services, err := repo.GetActiveByIDsTx(context.Background(), tx, nil)
	if err != nil {
		t.Fatalf("GetActiveByIDsTx: %v", err)
	}
	if len(services) != 0 {
		t.Fatalf("expected empty slice, got %+v", services)
	}
}

func TestToggleActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewServiceRepo(db)

	mock.ExpectExec(`is_active = NOT is_active`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM services`).
		WithArgs(uint64(5)).
		WillReturnRows(serviceRows(5))

	svc, err := repo.ToggleActive(context.Background(), 5)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if svc.ID != 5 {
		t.Fatalf("ID = %d, want 5", svc.ID)
	}
}

func TestToggleActiveNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewServiceRepo(db)

	mock.ExpectExec(`is_active = NOT is_active`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.ToggleActive(context.Background(), 5); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("err = %v, want ErrServiceNotFound", err)
	}
}
