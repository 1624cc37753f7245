package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/salon-reservation/internal/model"
)

const serviceColumns = `id, description, price, active, created_at, updated_at`

// ServiceRepo manages persistence for add-on services.
type ServiceRepo struct {
	db sqlx.ExtContext
}

func NewServiceRepo(db sqlx.ExtContext) *ServiceRepo { return &ServiceRepo{db: db} }

// WithTx returns a copy of the repository bound to tx.
func (r *ServiceRepo) WithTx(tx *sqlx.Tx) *ServiceRepo { return &ServiceRepo{db: tx} }

func (r *ServiceRepo) ListActive(ctx context.Context) ([]model.Service, error) {
	out := []model.Service{}
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+serviceColumns+` FROM services WHERE active = 1 ORDER BY description`)
	return out, err
}

func (r *ServiceRepo) FindActive(ctx context.Context, id uint64) (*model.Service, error) {
	var s model.Service
	err := sqlx.GetContext(ctx, r.db, &s,
		`SELECT `+serviceColumns+` FROM services WHERE id = ? AND active = 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindActiveByIDs returns the active services among ids.  Missing or
// inactive ids are simply absent from the result; callers compare counts.
func (r *ServiceRepo) FindActiveByIDs(ctx context.Context, ids []uint64) ([]model.Service, error) {
	out := []model.Service{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+serviceColumns+` FROM services WHERE id IN (?) AND active = 1 ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	err = sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(q), args...)
	return out, err
}

func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO services (description, price) VALUES (?, ?)`, s.Description, s.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.Active = true
	return nil
}

func (r *ServiceRepo) Update(ctx context.Context, id uint64, p model.ServicePatch) error {
	var a assignments
	setIf(&a, "description", p.Description)
	setIf(&a, "price", p.Price)
	if a.empty() {
		return ErrNoChange
	}
	return execUpdate(ctx, r.db, "services", id, &a, ErrServiceNotFound)
}

func (r *ServiceRepo) Deactivate(ctx context.Context, id uint64) (bool, error) {
	return deactivate(ctx, r.db, "services", id)
}
