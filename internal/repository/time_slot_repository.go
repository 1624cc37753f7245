package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/salon-reservation/internal/model"
)

const timeSlotColumns = `id, position, start_time, end_time, active, created_at, updated_at`

// TimeSlotRepo manages the small catalog of bookable daily windows.
type TimeSlotRepo struct {
	db sqlx.ExtContext
}

func NewTimeSlotRepo(db sqlx.ExtContext) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

func (r *TimeSlotRepo) WithTx(tx *sqlx.Tx) *TimeSlotRepo { return &TimeSlotRepo{db: tx} }

// ListActive returns the active slots in display order.
func (r *TimeSlotRepo) ListActive(ctx context.Context) ([]model.TimeSlot, error) {
	out := []model.TimeSlot{}
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+timeSlotColumns+` FROM time_slots WHERE active = 1 ORDER BY position, id`)
	return out, err
}

func (r *TimeSlotRepo) FindActive(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	var t model.TimeSlot
	err := sqlx.GetContext(ctx, r.db, &t,
		`SELECT `+timeSlotColumns+` FROM time_slots WHERE id = ? AND active = 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TimeSlotRepo) Create(ctx context.Context, t *model.TimeSlot) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO time_slots (position, start_time, end_time) VALUES (?, ?, ?)`,
		t.Position, t.StartTime, t.EndTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Active = true
	return nil
}

func (r *TimeSlotRepo) Update(ctx context.Context, id uint64, p model.TimeSlotPatch) error {
	var a assignments
	setIf(&a, "position", p.Position)
	setIf(&a, "start_time", p.StartTime)
	setIf(&a, "end_time", p.EndTime)
	if a.empty() {
		return ErrNoChange
	}
	return execUpdate(ctx, r.db, "time_slots", id, &a, ErrTimeSlotNotFound)
}

func (r *TimeSlotRepo) Deactivate(ctx context.Context, id uint64) (bool, error) {
	return deactivate(ctx, r.db, "time_slots", id)
}
