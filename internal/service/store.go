package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
)

// SQLBookingStore backs the booking workflow with MySQL.  Every Begin
// takes its own connection from the pool for the lifetime of the
// transaction.
type SQLBookingStore struct {
	db       *sqlx.DB
	bookings *repository.BookingRepo
	users    *repository.UserRepo
}

func NewSQLBookingStore(db *sqlx.DB) *SQLBookingStore {
	return &SQLBookingStore{
		db:       db,
		bookings: repository.NewBookingRepo(db),
		users:    repository.NewUserRepo(db),
	}
}

func (s *SQLBookingStore) Begin(ctx context.Context) (BookingTx, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}
	return &sqlBookingTx{
		tx:       tx,
		venues:   repository.NewVenueRepo(tx),
		services: repository.NewServiceRepo(tx),
		slots:    repository.NewTimeSlotRepo(tx),
		users:    repository.NewUserRepo(tx),
		bookings: repository.NewBookingRepo(s.db).WithTx(tx),
	}, nil
}

func (s *SQLBookingStore) FindDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	return s.bookings.FindDetail(ctx, id)
}

func (s *SQLBookingStore) ListDetails(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	return s.bookings.ListDetails(ctx, f)
}

func (s *SQLBookingStore) Deactivate(ctx context.Context, id uint64) (bool, error) {
	return s.bookings.Deactivate(ctx, id)
}

func (s *SQLBookingStore) FindUser(ctx context.Context, id uint64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// SlotTaken checks a slot outside any transaction, for read-only
// availability queries.
func (s *SQLBookingStore) SlotTaken(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error) {
	return s.bookings.SlotTaken(ctx, slot, excludeID)
}

type sqlBookingTx struct {
	tx       *sqlx.Tx
	venues   *repository.VenueRepo
	services *repository.ServiceRepo
	slots    *repository.TimeSlotRepo
	users    *repository.UserRepo
	bookings *repository.BookingRepo
}

func (t *sqlBookingTx) FindVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	return t.venues.FindActive(ctx, id)
}

func (t *sqlBookingTx) FindServices(ctx context.Context, ids []uint64) ([]model.Service, error) {
	return t.services.FindActiveByIDs(ctx, ids)
}

func (t *sqlBookingTx) FindTimeSlot(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	return t.slots.FindActive(ctx, id)
}

func (t *sqlBookingTx) FindUser(ctx context.Context, id uint64) (*model.User, error) {
	return t.users.GetByID(ctx, id)
}

func (t *sqlBookingTx) SlotTaken(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error) {
	return t.bookings.SlotTaken(ctx, slot, excludeID)
}

func (t *sqlBookingTx) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.bookings.LockActive(ctx, id)
}

func (t *sqlBookingTx) LineItems(ctx context.Context, bookingID uint64) ([]model.BookingLineItem, error) {
	return t.bookings.LineItems(ctx, bookingID)
}

func (t *sqlBookingTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.bookings.Insert(ctx, b)
}

func (t *sqlBookingTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	return t.bookings.Update(ctx, b)
}

func (t *sqlBookingTx) InsertLineItems(ctx context.Context, items []model.BookingLineItem) error {
	return t.bookings.InsertLineItems(ctx, items)
}

func (t *sqlBookingTx) DeleteLineItems(ctx context.Context, bookingID uint64) error {
	return t.bookings.DeleteLineItems(ctx, bookingID)
}

func (t *sqlBookingTx) Commit() error   { return t.tx.Commit() }
func (t *sqlBookingTx) Rollback() error { return t.tx.Rollback() }
