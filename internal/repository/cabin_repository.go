package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// CabinRepo provides read and administrative write access to the
// `cabins` table.  All reads resolve "absent" to ErrCabinNotFound; they
// never invent rows.  Availability is computed here as well because it
// is a single set-relative-complement query over cabins and
// reservations, not per-row application code.
type CabinRepo struct {
	db *sql.DB
}

// NewCabinRepo returns a new CabinRepo bound to the given database.
func NewCabinRepo(db *sql.DB) *CabinRepo { return &CabinRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span several repositories.
func (r *CabinRepo) DB() *sql.DB { return r.db }

const cabinColumns = `id, name, description, capacity, rate_cents, image_url, is_active, created_at, updated_at`

func scanCabin(row *sql.Row) (*model.Cabin, error) {
	var cab model.Cabin
	var imageURL sql.NullString
	err := row.Scan(&cab.ID, &cab.Name, &cab.Description, &cab.Capacity, &cab.RateCents,
		&imageURL, &cab.IsActive, &cab.CreatedAt, &cab.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCabinNotFound
		}
		return nil, err
	}
	if imageURL.Valid {
		v := imageURL.String
		cab.ImageURL = &v
	}
	return &cab, nil
}

// GetByID returns a cabin regardless of its active flag.  Admin
// endpoints use this to edit deactivated cabins.
func (r *CabinRepo) GetByID(ctx context.Context, id uint64) (*model.Cabin, error) {
	const q = `SELECT ` + cabinColumns + ` FROM cabins WHERE id = ?`
	return scanCabin(r.db.QueryRowContext(ctx, q, id))
}

// GetActiveForUpdateTx resolves an active cabin inside the given
// transaction and takes a row lock on it (SELECT ... FOR UPDATE).  The
// lock is what serializes concurrent bookings on the same cabin: a
// second transaction blocks here until the first commits or rolls back,
// so its overlap re-check always observes the first booking's outcome.
// Inactive or absent cabins yield ErrCabinNotFound.
func (r *CabinRepo) GetActiveForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Cabin, error) {
	const q = `SELECT ` + cabinColumns + ` FROM cabins WHERE id = ? AND is_active = 1 FOR UPDATE`
	return scanCabin(tx.QueryRowContext(ctx, q, id))
}

// ListActive returns all active cabins ordered by id.
func (r *CabinRepo) ListActive(ctx context.Context) ([]model.Cabin, error) {
	const q = `SELECT ` + cabinColumns + ` FROM cabins WHERE is_active = 1 ORDER BY id`
	return r.queryCabins(ctx, q)
}

// ListFeatured returns the newest active cabins up to the given limit.
// Used by the landing page.
func (r *CabinRepo) ListFeatured(ctx context.Context, limit int) ([]model.Cabin, error) {
	const q = `SELECT ` + cabinColumns + ` FROM cabins WHERE is_active = 1 ORDER BY created_at DESC LIMIT ?`
	return r.queryCabins(ctx, q, limit)
}

// FindAvailable returns active cabins that can host the requested
// occupancy over the half-open range [dr.Start, dr.End), ordered by id.
// A cabin is excluded when any of its non-cancelled reservations
// overlaps the range: existing.start < query.end AND query.start <
// existing.end.  The exclusion is one NOT IN subquery so the whole
// answer comes from a single consistent read; it is still advisory
// only — the booking transaction re-checks overlap under its own lock.
func (r *CabinRepo) FindAvailable(ctx context.Context, dr model.DateRange, occupancy uint64) ([]model.Cabin, error) {
	const q = `SELECT ` + cabinColumns + `
               FROM cabins
               WHERE is_active = 1
                 AND capacity >= ?
                 AND id NOT IN (
                     SELECT cabin_id FROM reservations
                     WHERE status <> 'CANCELLED'
                       AND start_date < ?
                       AND end_date > ?
                 )
               ORDER BY id`
	return r.queryCabins(ctx, q, occupancy,
		dr.End.Format(model.DateLayout), dr.Start.Format(model.DateLayout))
}

func (r *CabinRepo) queryCabins(ctx context.Context, query string, args ...interface{}) ([]model.Cabin, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cabins := make([]model.Cabin, 0)
	for rows.Next() {
		var cab model.Cabin
		var imageURL sql.NullString
		if err := rows.Scan(&cab.ID, &cab.Name, &cab.Description, &cab.Capacity, &cab.RateCents,
			&imageURL, &cab.IsActive, &cab.CreatedAt, &cab.UpdatedAt); err != nil {
			return nil, err
		}
		if imageURL.Valid {
			v := imageURL.String
			cab.ImageURL = &v
		}
		cabins = append(cabins, cab)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cabins, nil
}

// Create inserts a cabin and populates its id and timestamps.
func (r *CabinRepo) Create(ctx context.Context, cab *model.Cabin) error {
	const q = `INSERT INTO cabins (name, description, capacity, rate_cents, image_url, is_active)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, cab.Name, cab.Description, cab.Capacity, cab.RateCents,
		cab.ImageURL, cab.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cab.ID = uint64(id)
	fresh, err := r.GetByID(ctx, cab.ID)
	if err != nil {
		return err
	}
	*cab = *fresh
	return nil
}

// Update rewrites the mutable attributes of a cabin (rate, capacity,
// description, image, active flag).  The identity never changes.
// Returns ErrCabinNotFound when no row matches.
func (r *CabinRepo) Update(ctx context.Context, cab *model.Cabin) error {
	const q = `UPDATE cabins
               SET name = ?, description = ?, capacity = ?, rate_cents = ?, image_url = ?, is_active = ?, updated_at = NOW()
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, cab.Name, cab.Description, cab.Capacity, cab.RateCents,
		cab.ImageURL, cab.IsActive, cab.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The UPDATE may also affect zero rows when nothing changed;
		// distinguish by checking existence.
		if _, getErr := r.GetByID(ctx, cab.ID); getErr != nil {
			return getErr
		}
	}
	fresh, err := r.GetByID(ctx, cab.ID)
	if err != nil {
		return err
	}
	*cab = *fresh
	return nil
}

// Delete removes a cabin that has never been reserved.  The RESTRICT
// foreign key on reservations.cabin_id makes the database refuse the
// delete while reservations reference the cabin; that refusal is
// surfaced as ErrConflict so admins deactivate instead.
func (r *CabinRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cabins WHERE id = ?`, id)
	if err != nil {
		// MySQL error 1451: cannot delete a parent row, FK constraint.
		if strings.Contains(err.Error(), "1451") {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCabinNotFound
	}
	return nil
}
