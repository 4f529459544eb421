package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// ServiceRepo provides access to the `services` table of per-night
// add-ons.  The lifecycle mirrors cabins: identity is immutable, rate
// and active flag are mutable, and rows referenced by reservation line
// items cannot be physically deleted.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceColumns = `id, name, description, rate_cents, is_active, created_at, updated_at`

func scanService(row *sql.Row) (*model.Service, error) {
	var svc model.Service
	err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.RateCents,
		&svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// GetByID returns a service regardless of its active flag.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	return scanService(r.db.QueryRowContext(ctx, q, id))
}

// ListActive returns all active services ordered by name, the order the
// booking form presents them in.
func (r *ServiceRepo) ListActive(ctx context.Context) ([]model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE is_active = 1 ORDER BY name`
	return r.queryServices(ctx, q)
}

// ListAll returns every service including deactivated ones.  Admin view.
func (r *ServiceRepo) ListAll(ctx context.Context) ([]model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services ORDER BY name`
	return r.queryServices(ctx, q)
}

// GetActiveByIDsTx resolves the given ids to active services inside the
// provided transaction.  Order of the result follows the input ids.
// The first id that does not resolve aborts the lookup with an
// UnknownServiceError naming it, so the booking transaction can report
// exactly which service is missing.  An empty id list returns an empty
// slice and touches nothing.
func (r *ServiceRepo) GetActiveByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Service, error) {
	if len(ids) == 0 {
		return []model.Service{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	query := `SELECT ` + serviceColumns + ` FROM services
              WHERE is_active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byID := make(map[uint64]model.Service, len(ids))
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.RateCents,
			&svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		byID[svc.ID] = svc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			return nil, &UnknownServiceError{ServiceID: id}
		}
		out = append(out, svc)
	}
	return out, nil
}

func (r *ServiceRepo) queryServices(ctx context.Context, query string, args ...interface{}) ([]model.Service, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	services := make([]model.Service, 0)
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.RateCents,
			&svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

// Create inserts a service and populates its id and timestamps.
func (r *ServiceRepo) Create(ctx context.Context, svc *model.Service) error {
	const q = `INSERT INTO services (name, description, rate_cents, is_active) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, svc.Name, svc.Description, svc.RateCents, svc.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	svc.ID = uint64(id)
	fresh, err := r.GetByID(ctx, svc.ID)
	if err != nil {
		return err
	}
	*svc = *fresh
	return nil
}

// Update rewrites the mutable attributes of a service.
func (r *ServiceRepo) Update(ctx context.Context, svc *model.Service) error {
	const q = `UPDATE services
               SET name = ?, description = ?, rate_cents = ?, is_active = ?, updated_at = NOW()
               WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, svc.Name, svc.Description, svc.RateCents, svc.IsActive, svc.ID); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, svc.ID)
	if err != nil {
		return err
	}
	*svc = *fresh
	return nil
}

// ToggleActive flips the is_active flag and returns the updated row.
func (r *ServiceRepo) ToggleActive(ctx context.Context, id uint64) (*model.Service, error) {
	const q = `UPDATE services SET is_active = NOT is_active, updated_at = NOW() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrServiceNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a service that has never been booked.  Line items
// keep a RESTRICT foreign key to services, so the database refuses the
// delete while history references the row; surfaced as ErrConflict.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
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
		return ErrServiceNotFound
	}
	return nil
}
