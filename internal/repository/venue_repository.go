package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/salon-reservation/internal/model"
)

const venueColumns = `id, title, address, latitude, longitude, capacity, price, active, created_at, updated_at`

// VenueRepo manages persistence for venues.
type VenueRepo struct {
	db sqlx.ExtContext
}

func NewVenueRepo(db sqlx.ExtContext) *VenueRepo { return &VenueRepo{db: db} }

// WithTx returns a copy of the repository bound to tx.
func (r *VenueRepo) WithTx(tx *sqlx.Tx) *VenueRepo { return &VenueRepo{db: tx} }

// ListActive returns every active venue ordered by title.
func (r *VenueRepo) ListActive(ctx context.Context) ([]model.Venue, error) {
	out := []model.Venue{}
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+venueColumns+` FROM venues WHERE active = 1 ORDER BY title`)
	return out, err
}

// FindActive loads one active venue.  ErrVenueNotFound covers both missing
// and soft-deleted rows.
func (r *VenueRepo) FindActive(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	err := sqlx.GetContext(ctx, r.db, &v,
		`SELECT `+venueColumns+` FROM venues WHERE id = ? AND active = 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts v and sets its ID.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (title, address, latitude, longitude, capacity, price) VALUES (?, ?, ?, ?, ?, ?)`,
		v.Title, v.Address, v.Latitude, v.Longitude, v.Capacity, v.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	v.Active = true
	return nil
}

// Update applies the non-nil fields of p to an active venue.
func (r *VenueRepo) Update(ctx context.Context, id uint64, p model.VenuePatch) error {
	var a assignments
	setIf(&a, "title", p.Title)
	setIf(&a, "address", p.Address)
	setIf(&a, "latitude", p.Latitude)
	setIf(&a, "longitude", p.Longitude)
	setIf(&a, "capacity", p.Capacity)
	setIf(&a, "price", p.Price)
	if a.empty() {
		return ErrNoChange
	}
	return execUpdate(ctx, r.db, "venues", id, &a, ErrVenueNotFound)
}

// Deactivate soft-deletes a venue.  It reports false when the venue was
// already inactive or never existed.
func (r *VenueRepo) Deactivate(ctx context.Context, id uint64) (bool, error) {
	return deactivate(ctx, r.db, "venues", id)
}

// execUpdate runs UPDATE <table> SET ... on an active row.  MySQL reports
// zero affected rows both for a missing row and for an update that changes
// nothing, so a zero count is followed by an existence probe.
func execUpdate(ctx context.Context, db sqlx.ExtContext, table string, id uint64, a *assignments, notFound error) error {
	a.raw("updated_at = UTC_TIMESTAMP()")
	args := append(a.args, id)
	res, err := db.ExecContext(ctx, `UPDATE `+table+` SET `+a.clause()+` WHERE id = ? AND active = 1`, args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var one int
	err = sqlx.GetContext(ctx, db, &one, `SELECT 1 FROM `+table+` WHERE id = ? AND active = 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

func deactivate(ctx context.Context, db sqlx.ExtContext, table string, id uint64) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET active = 0, updated_at = UTC_TIMESTAMP() WHERE id = ? AND active = 1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
