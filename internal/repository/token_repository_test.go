package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTokenMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewTokenRepo(db), mock
}

func TestStoreRefresh(t *testing.T) {
	repo, mock := newTokenMock(t)
	exp := time.Now().UTC().Add(7 * 24 * time.Hour)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(uint64(8), "hash-a", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.StoreRefresh(context.Background(), 8, "hash-a", exp); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRefresh(t *testing.T) {
	future := time.Now().UTC().Add(time.Hour)
	past := time.Now().UTC().Add(-time.Hour)
	revoked := time.Now().UTC().Add(-time.Minute)

	cases := []struct {
		name      string
		expiresAt time.Time
		revokedAt interface{}
		wantID    uint64
		wantErr   bool
	}{
		{"valid", future, nil, 8, false},
		{"expired", past, nil, 0, true},
		{"revoked", future, revoked, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newTokenMock(t)
			mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash = \?`).
				WithArgs("hash-a").
				WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
					AddRow(8, tc.expiresAt, tc.revokedAt))

			id, err := repo.ValidateRefresh(context.Background(), "hash-a")
			if tc.wantErr {
				// Dead tokens are indistinguishable from absent ones.
				if !errors.Is(err, sql.ErrNoRows) {
					t.Fatalf("err = %v, want sql.ErrNoRows", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateRefresh: %v", err)
			}
			if id != tc.wantID {
				t.Fatalf("user id = %d, want %d", id, tc.wantID)
			}
		})
	}
}

func TestValidateRefreshUnknownHash(t *testing.T) {
	repo, mock := newTokenMock(t)

	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash = \?`).
		WithArgs("no-such").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.ValidateRefresh(context.Background(), "no-such"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestRevokeByHash(t *testing.T) {
	repo, mock := newTokenMock(t)

	mock.ExpectExec(`SET revoked_at = NOW\(\) WHERE token_hash = \? AND revoked_at IS NULL`).
		WithArgs("hash-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RevokeByHash(context.Background(), "hash-a"); err != nil {
		t.Fatalf("RevokeByHash: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRevokeAllForUser(t *testing.T) {
	repo, mock := newTokenMock(t)

	mock.ExpectExec(`SET revoked_at = NOW\(\) WHERE user_id = \? AND revoked_at IS NULL`).
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.RevokeAllForUser(context.Background(), 8); err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
