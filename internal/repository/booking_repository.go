package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/salon-reservation/internal/model"
)

const bookingColumns = `id, booking_date, venue_id, user_id, time_slot_id, theme, photo, venue_price, total, active, created_at, updated_at`

// BookingRepo persists bookings and their service line items.  A repo bound
// to a transaction (see WithTx) takes row locks on the reads the booking
// workflow decides on, so a concurrent writer of the same slot waits for
// the transaction to finish.
type BookingRepo struct {
	db   sqlx.ExtContext
	lock bool
}

func NewBookingRepo(db sqlx.ExtContext) *BookingRepo { return &BookingRepo{db: db} }

// WithTx returns a locking copy of the repository bound to tx.
func (r *BookingRepo) WithTx(tx *sqlx.Tx) *BookingRepo { return &BookingRepo{db: tx, lock: true} }

func (r *BookingRepo) forUpdate() string {
	if r.lock {
		return " FOR UPDATE"
	}
	return ""
}

// SlotTaken reports whether an active booking other than excludeID holds
// slot.  excludeID 0 excludes nothing.  Inside a transaction the matching
// index range is locked, which blocks a concurrent insert into the same
// slot until commit.
func (r *BookingRepo) SlotTaken(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error) {
	q := `SELECT id FROM bookings WHERE booking_date = ? AND venue_id = ? AND time_slot_id = ? AND active = 1`
	args := []any{slot.Date, slot.VenueID, slot.TimeSlotID}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var ids []uint64
	if err := sqlx.SelectContext(ctx, r.db, &ids, q+r.forUpdate(), args...); err != nil {
		return false, mapWriteErr(err)
	}
	return len(ids) > 0, nil
}

// LockActive loads an active booking, locking its row inside a transaction.
func (r *BookingRepo) LockActive(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := sqlx.GetContext(ctx, r.db, &b,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND active = 1`+r.forUpdate(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return &b, nil
}

// Insert writes b and sets its ID.  A second active booking for the same
// slot violates uq_bookings_active_slot and yields ErrDuplicate.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (booking_date, venue_id, user_id, time_slot_id, theme, photo, venue_price, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Date, b.VenueID, b.UserID, b.TimeSlotID, b.Theme, b.Photo, b.VenuePrice, b.Total)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Active = true
	return nil
}

// Update rewrites the mutable columns of an active booking from b.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		    SET booking_date = ?, venue_id = ?, user_id = ?, time_slot_id = ?, theme = ?, photo = ?,
		        venue_price = ?, total = ?, updated_at = UTC_TIMESTAMP()
		  WHERE id = ? AND active = 1`,
		b.Date, b.VenueID, b.UserID, b.TimeSlotID, b.Theme, b.Photo, b.VenuePrice, b.Total, b.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isLockConflict(err):
		return ErrLockConflict
	case isDuplicate(err):
		return ErrDuplicate
	case isMissingReference(err):
		return ErrMissingReference
	}
	return err
}

// InsertLineItems writes all items in one multi-row INSERT.  An empty slice
// is a no-op.
func (r *BookingRepo) InsertLineItems(ctx context.Context, items []model.BookingLineItem) error {
	if len(items) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_services (booking_id, service_id, price) VALUES `)
	args := make([]any, 0, len(items)*3)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, it.BookingID, it.ServiceID, it.Price)
	}
	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return mapWriteErr(err)
}

// DeleteLineItems removes every line item of a booking.
func (r *BookingRepo) DeleteLineItems(ctx context.Context, bookingID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM booking_services WHERE booking_id = ?`, bookingID)
	return err
}

func (r *BookingRepo) LineItems(ctx context.Context, bookingID uint64) ([]model.BookingLineItem, error) {
	out := []model.BookingLineItem{}
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT booking_id, service_id, price FROM booking_services WHERE booking_id = ? ORDER BY service_id`, bookingID)
	return out, err
}

// Deactivate cancels an active booking.  Line items stay in place.
func (r *BookingRepo) Deactivate(ctx context.Context, id uint64) (bool, error) {
	return deactivate(ctx, r.db, "bookings", id)
}

// bookingRow is one row of the booking/line-item join.  A booking with N
// line items yields N rows; a booking without any yields one row with NULL
// service columns.
type bookingRow struct {
	model.Booking
	VenueTitle         sql.NullString      `db:"venue_title"`
	SlotStart          sql.NullString      `db:"slot_start"`
	SlotEnd            sql.NullString      `db:"slot_end"`
	OwnerName          sql.NullString      `db:"owner_name"`
	OwnerSurname       sql.NullString      `db:"owner_surname"`
	OwnerUsername      sql.NullString      `db:"owner_username"`
	OwnerPhone         sql.NullString      `db:"owner_phone"`
	ServiceID          sql.NullInt64       `db:"service_id"`
	ServiceDescription sql.NullString      `db:"service_description"`
	ServicePrice       decimal.NullDecimal `db:"service_price"`
}

const bookingDetailQuery = `
SELECT b.id, b.booking_date, b.venue_id, b.user_id, b.time_slot_id, b.theme, b.photo,
       b.venue_price, b.total, b.active, b.created_at, b.updated_at,
       v.title AS venue_title, t.start_time AS slot_start, t.end_time AS slot_end,
       u.name AS owner_name, u.surname AS owner_surname, u.username AS owner_username, u.phone AS owner_phone,
       bs.service_id, s.description AS service_description, bs.price AS service_price
  FROM bookings b
  LEFT JOIN venues v ON v.id = b.venue_id
  LEFT JOIN time_slots t ON t.id = b.time_slot_id
  LEFT JOIN users u ON u.id = b.user_id
  LEFT JOIN booking_services bs ON bs.booking_id = b.id
  LEFT JOIN services s ON s.id = bs.service_id
 WHERE b.active = 1`

// FindDetail returns one active booking with display names and services.
func (r *BookingRepo) FindDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	var rows []bookingRow
	err := sqlx.SelectContext(ctx, r.db, &rows, bookingDetailQuery+` AND b.id = ? ORDER BY bs.service_id`, id)
	if err != nil {
		return nil, err
	}
	out := regroupBookings(rows)
	if len(out) == 0 {
		return nil, ErrBookingNotFound
	}
	return &out[0], nil
}

// ListDetails returns active bookings matching f, newest date first.
func (r *BookingRepo) ListDetails(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	q := bookingDetailQuery
	var args []any
	if f.UserID != 0 {
		q += ` AND b.user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Date != nil {
		q += ` AND b.booking_date = ?`
		args = append(args, *f.Date)
	}
	q += ` ORDER BY b.booking_date DESC, b.created_at DESC, b.id DESC, bs.service_id`

	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, args...); err != nil {
		return nil, err
	}
	return regroupBookings(rows), nil
}

// regroupBookings collapses the flattened join into one detail per booking,
// keeping the order in which bookings first appear.
func regroupBookings(rows []bookingRow) []model.BookingDetail {
	out := make([]model.BookingDetail, 0)
	index := make(map[uint64]int)
	for _, row := range rows {
		i, seen := index[row.ID]
		if !seen {
			d := model.BookingDetail{
				Booking:       row.Booking,
				VenueTitle:    row.VenueTitle.String,
				SlotStart:     row.SlotStart.String,
				SlotEnd:       row.SlotEnd.String,
				OwnerName:     row.OwnerName.String,
				OwnerSurname:  row.OwnerSurname.String,
				OwnerUsername: row.OwnerUsername.String,
				Services:      []model.BookingService{},
			}
			if row.OwnerPhone.Valid {
				p := row.OwnerPhone.String
				d.OwnerPhone = &p
			}
			out = append(out, d)
			i = len(out) - 1
			index[row.ID] = i
		}
		if row.ServiceID.Valid {
			out[i].Services = append(out[i].Services, model.BookingService{
				ServiceID:   uint64(row.ServiceID.Int64),
				Description: row.ServiceDescription.String,
				Price:       row.ServicePrice.Decimal,
			})
		}
	}
	return out
}

// Summary aggregates active bookings between from and to (inclusive, both
// optional).
func (r *BookingRepo) Summary(ctx context.Context, from, to *model.Date) (*model.ReportSummary, error) {
	where := ` WHERE b.active = 1`
	var args []any
	if from != nil {
		where += ` AND b.booking_date >= ?`
		args = append(args, *from)
	}
	if to != nil {
		where += ` AND b.booking_date <= ?`
		args = append(args, *to)
	}

	sum := &model.ReportSummary{From: from, To: to, Venues: []model.VenueStats{}}
	var totals struct {
		Bookings int             `db:"bookings"`
		Revenue  decimal.Decimal `db:"revenue"`
		Clients  int             `db:"clients"`
	}
	err := sqlx.GetContext(ctx, r.db, &totals,
		`SELECT COUNT(*) AS bookings, COALESCE(SUM(b.total), 0) AS revenue, COUNT(DISTINCT b.user_id) AS clients
		   FROM bookings b`+where, args...)
	if err != nil {
		return nil, err
	}
	sum.Bookings, sum.Revenue, sum.ActiveClients = totals.Bookings, totals.Revenue, totals.Clients

	err = sqlx.GetContext(ctx, r.db, &sum.ServicesSold,
		`SELECT COUNT(*) FROM booking_services bs JOIN bookings b ON b.id = bs.booking_id`+where, args...)
	if err != nil {
		return nil, err
	}

	err = sqlx.SelectContext(ctx, r.db, &sum.Venues,
		`SELECT b.venue_id, COALESCE(v.title, '') AS venue_title, COUNT(*) AS bookings, COALESCE(SUM(b.total), 0) AS revenue
		   FROM bookings b LEFT JOIN venues v ON v.id = b.venue_id`+where+`
		  GROUP BY b.venue_id, v.title
		  ORDER BY revenue DESC, b.venue_id`, args...)
	if err != nil {
		return nil, err
	}
	return sum, nil
}
