package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// service line items.  A reservation groups a stay in one cabin with
// zero or more add-on services booked in the same transaction.  Line
// items live in the reservation_services table and are owned
// exclusively by their reservation.  All timestamp fields are assumed
// to be stored in UTC.
//
// Writes that participate in the booking or cancellation transaction
// take a *sql.Tx; the caller owns commit and rollback.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// OverlapExistsTx reports whether any non-cancelled reservation on the
// cabin overlaps the half-open range [dr.Start, dr.End).  Two ranges
// overlap iff start1 < end2 AND start2 < end1.  This is the write-time
// re-check that enforces the no-double-booking invariant: it must run
// inside the booking transaction, after the cabin row lock has been
// taken, because the availability search's earlier read is advisory
// and can be stale by the time the insert happens.
func (r *ReservationRepo) OverlapExistsTx(ctx context.Context, tx *sql.Tx, cabinID uint64, dr model.DateRange) (bool, error) {
	const q = `SELECT EXISTS(
                   SELECT 1 FROM reservations
                   WHERE cabin_id = ?
                     AND status <> 'CANCELLED'
                     AND start_date < ?
                     AND end_date > ?
               )`
	var exists bool
	err := tx.QueryRowContext(ctx, q, cabinID,
		dr.End.Format(model.DateLayout), dr.Start.Format(model.DateLayout)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CreateTx inserts a new reservation header within the scope of an
// existing transaction.  It populates the generated id and queries the
// row back for timestamps and defaults.  The caller must commit or
// roll back; until commit nothing is visible to readers.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, cabin_id, start_date, end_date, adults, children, total_cents, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.CabinID,
		res.Range.Start.Format(model.DateLayout), res.Range.End.Format(model.DateLayout),
		res.Adults, res.Children, res.TotalCents, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// AddServicesTx bulk-inserts the reservation's line items in a single
// statement, snapshotting each service's current nightly rate.  Passing
// an empty slice has no effect and returns nil.
func (r *ReservationRepo) AddServicesTx(ctx context.Context, tx *sql.Tx, reservationID uint64, services []model.Service) error {
	if len(services) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_services (reservation_id, service_id, rate_cents) VALUES `
	args := make([]interface{}, 0, len(services)*3)
	for i, svc := range services {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, reservationID, svc.ID, svc.RateCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const reservationColumns = `id, user_id, cabin_id, start_date, end_date, adults, children, total_cents, status, created_at, updated_at`

func scanReservation(scan func(dest ...interface{}) error) (*model.Reservation, error) {
	var res model.Reservation
	err := scan(&res.ID, &res.UserID, &res.CabinID, &res.Range.Start, &res.Range.End,
		&res.Adults, &res.Children, &res.TotalCents, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByID returns a reservation with its service ids.  Absence yields
// ErrReservationNotFound; the ownership check belongs to the handler
// because admins may read any reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		return nil, err
	}
	ids, err := serviceIDs(ctx, r.db, res.ID)
	if err != nil {
		return nil, err
	}
	res.ServiceIDs = ids
	return res, nil
}

// GetForUpdateTx loads a reservation with its service ids inside the
// given transaction and locks its row, so a concurrent cancel of the
// same reservation blocks until this transaction finishes.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	res, err := scanReservation(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		return nil, err
	}
	ids, err := serviceIDs(ctx, tx, res.ID)
	if err != nil {
		return nil, err
	}
	res.ServiceIDs = ids
	return res, nil
}

// CancelTx marks a reservation CANCELLED and refreshes updated_at.  The
// caller has already verified the transition is legal under the row
// lock taken by GetForUpdateTx.  Once the transaction commits, the
// reservation's range is excluded from every subsequent overlap check.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE reservations SET status = 'CANCELLED', updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// ReservationDetail is the listing shape returned to clients: the
// reservation joined with its cabin name and service ids.
type ReservationDetail struct {
	ID         uint64   `json:"id"`
	UserID     uint64   `json:"user_id"`
	CabinID    uint64   `json:"cabin_id"`
	CabinName  string   `json:"cabin_name"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Adults     uint32   `json:"adults"`
	Children   uint32   `json:"children"`
	TotalCents uint64   `json:"total_cents"`
	Status     string   `json:"status"`
	ServiceIDs []uint64 `json:"service_ids"`
}

// ListByUser returns all reservations of one user, newest first, with
// cabin names and service ids populated.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.user_id, r.cabin_id, c.name, r.start_date, r.end_date,
                      r.adults, r.children, r.total_cents, r.status
               FROM reservations r
               JOIN cabins c ON c.id = r.cabin_id
               WHERE r.user_id = ?
               ORDER BY r.created_at DESC`
	return r.queryDetails(ctx, q, userID)
}

// ListAll returns every reservation, newest first.  Admin view.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.user_id, r.cabin_id, c.name, r.start_date, r.end_date,
                      r.adults, r.children, r.total_cents, r.status
               FROM reservations r
               JOIN cabins c ON c.id = r.cabin_id
               ORDER BY r.created_at DESC`
	return r.queryDetails(ctx, q)
}

func (r *ReservationRepo) queryDetails(ctx context.Context, query string, args ...interface{}) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d ReservationDetail
		var start, end sql.NullTime
		if err := rows.Scan(&d.ID, &d.UserID, &d.CabinID, &d.CabinName, &start, &end,
			&d.Adults, &d.Children, &d.TotalCents, &d.Status); err != nil {
			return nil, err
		}
		if start.Valid {
			d.StartDate = start.Time.UTC().Format(model.DateLayout)
		}
		if end.Valid {
			d.EndDate = end.Time.UTC().Format(model.DateLayout)
		}
		d.ServiceIDs = []uint64{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Populate line items for all reservations in one query.
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	lineQuery := `SELECT reservation_id, service_id FROM reservation_services
                  WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
                  ORDER BY reservation_id, id`
	lrows, err := r.db.QueryContext(ctx, lineQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var rid, sid uint64
		if err := lrows.Scan(&rid, &sid); err != nil {
			return nil, err
		}
		idx, ok := index[rid]
		if !ok {
			continue
		}
		details[idx].ServiceIDs = append(details[idx].ServiceIDs, sid)
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// querier is the common read surface of *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func serviceIDs(ctx context.Context, q querier, reservationID uint64) ([]uint64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT service_id FROM reservation_services WHERE reservation_id = ? ORDER BY id`,
		reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		ids = append(ids, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
