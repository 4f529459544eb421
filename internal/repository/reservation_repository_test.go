package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

func newReservationMock(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewReservationRepo(db), mock, db
}

func TestOverlapExistsTx(t *testing.T) {
	repo, mock, db := newReservationMock(t)
	dr, _ := model.ParseDateRange("2026-09-10", "2026-09-15")

	cases := []struct {
		name   string
		exists bool
	}{
		{"overlap found", true},
		{"no overlap", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(uint64(3), "2026-09-15", "2026-09-10").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tc.exists))
			mock.ExpectRollback()

			tx, err := db.Begin()
			if err != nil {
				t.Fatalf("Begin: %v", err)
			}
			got, err := repo.OverlapExistsTx(context.Background(), tx, 3, dr)
			if err != nil {
				t.Fatalf("OverlapExistsTx: %v", err)
			}
			if got != tc.exists {
				t.Fatalf("exists = %v, want %v", got, tc.exists)
			}
			_ = tx.Rollback()
		})
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateTx(t *testing.T) {
	repo, mock, db := newReservationMock(t)
	dr, _ := model.ParseDateRange("2026-09-01", "2026-09-04")
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(uint64(8), uint64(3), "2026-09-01", "2026-09-04",
			uint32(2), uint32(1), uint64(36000), model.StatusPending).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM reservations`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	res := &model.Reservation{
		UserID:     8,
		CabinID:    3,
		Range:      dr,
		Adults:     2,
		Children:   1,
		TotalCents: 36000,
		Status:     model.StatusPending,
	}
	if err := repo.CreateTx(context.Background(), tx, res); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	if res.ID != 42 {
		t.Fatalf("ID = %d, want 42", res.ID)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAddServicesTx(t *testing.T) {
	repo, mock, db := newReservationMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO reservation_services`).
		WithArgs(uint64(42), uint64(1), uint64(1500), uint64(42), uint64(2), uint64(500)).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	services := []model.Service{
		{ID: 1, RateCents: 1500},
		{ID: 2, RateCents: 500},
	}
	if err := repo.AddServicesTx(context.Background(), tx, 42, services); err != nil {
		t.Fatalf("AddServicesTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAddServicesTxEmpty(t *testing.T) {
	repo, mock, db := newReservationMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	// No services means no SQL at all.
	if err := repo.AddServicesTx(context.Background(), tx, 42, nil); err != nil {
		t.Fatalf("AddServicesTx: %v", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCancelTx(t *testing.T) {
	repo, mock, db := newReservationMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations SET status = 'CANCELLED'`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := repo.CancelTx(context.Background(), tx, 42); err != nil {
		t.Fatalf("CancelTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetForUpdateTxLoadsServiceIDs(t *testing.T) {
	repo, mock, db := newReservationMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "cabin_id", "start_date", "end_date",
			"adults", "children", "total_cents", "status", "created_at", "updated_at",
		}).AddRow(42, 8, 3, now, now.AddDate(0, 0, 3), 2, 0, 36000, model.StatusPending, now, now))
	mock.ExpectQuery(`FROM reservation_services`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"service_id"}).AddRow(11).AddRow(12))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	res, err := repo.GetForUpdateTx(context.Background(), tx, 42)
	if err != nil {
		t.Fatalf("GetForUpdateTx: %v", err)
	}
	// The cancellation event reports the line items, so they must be
	// read under the same row lock as the header.
	if len(res.ServiceIDs) != 2 || res.ServiceIDs[0] != 11 || res.ServiceIDs[1] != 12 {
		t.Fatalf("ServiceIDs = %v, want [11 12]", res.ServiceIDs)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByIDNotFoundReservation(t *testing.T) {
	repo, mock, _ := newReservationMock(t)

	mock.ExpectQuery(`FROM reservations WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("err = %v, want ErrReservationNotFound", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, _ := newReservationMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "cabin_id", "name", "start_date", "end_date",
		"adults", "children", "total_cents", "status",
	}).
		AddRow(2, 8, 3, "Lakeside", now, now.AddDate(0, 0, 3), 2, 0, 30000, model.StatusPending).
		AddRow(1, 8, 5, "Forest", now, now.AddDate(0, 0, 2), 1, 1, 24000, model.StatusCancelled)
	mock.ExpectQuery(`JOIN cabins`).
		WithArgs(uint64(8)).
		WillReturnRows(rows)
	mock.ExpectQuery(`FROM reservation_services`).
		WithArgs(uint64(2), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "service_id"}).
			AddRow(2, 11).
			AddRow(2, 12))

	details, err := repo.ListByUser(context.Background(), 8)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("len = %d, want 2", len(details))
	}
	if len(details[0].ServiceIDs) != 2 || details[0].ServiceIDs[0] != 11 {
		t.Fatalf("service ids not populated: %+v", details[0])
	}
	if len(details[1].ServiceIDs) != 0 {
		t.Fatalf("expected no service ids, got %+v", details[1].ServiceIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
