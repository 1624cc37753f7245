package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
)

// BookingTx is the set of reads and writes the booking workflow performs
// inside one transaction.  Nothing obtained from a BookingTx may be used
// after Commit or Rollback.
type BookingTx interface {
	VenueReader
	ServiceReader
	SlotReader
	FindTimeSlot(ctx context.Context, id uint64) (*model.TimeSlot, error)
	FindUser(ctx context.Context, id uint64) (*model.User, error)

	LockBooking(ctx context.Context, id uint64) (*model.Booking, error)
	LineItems(ctx context.Context, bookingID uint64) ([]model.BookingLineItem, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	InsertLineItems(ctx context.Context, items []model.BookingLineItem) error
	DeleteLineItems(ctx context.Context, bookingID uint64) error

	Commit() error
	Rollback() error
}

// BookingStore opens booking transactions and serves the paths that need
// none.
type BookingStore interface {
	SlotReader
	Begin(ctx context.Context) (BookingTx, error)
	FindDetail(ctx context.Context, id uint64) (*model.BookingDetail, error)
	ListDetails(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error)
	Deactivate(ctx context.Context, id uint64) (bool, error)
	FindUser(ctx context.Context, id uint64) (*model.User, error)
}

// Notifier delivers a booking confirmation.  Send reports whether the
// message was accepted by the transport.
type Notifier interface {
	Send(ctx context.Context, recipient string, summary model.BookingSummary) bool
}

// Requester is the authenticated caller of a booking operation.
type Requester struct {
	UserID uint64
	Role   model.Role
}

// CreateBookingInput is a booking request.  UserID books on behalf of
// another user and is honoured for admin and staff only.
type CreateBookingInput struct {
	Date       model.Date
	VenueID    uint64
	TimeSlotID uint64
	Theme      *string
	Photo      *string
	ServiceIDs []uint64
	UserID     uint64
}

// CreateResult reports the new booking id and whether the confirmation
// was handed to the mail transport.
type CreateResult struct {
	BookingID uint64 `json:"bookingId"`
	EmailSent bool   `json:"emailSent"`
}

// BookingManager is the single entry point for creating, modifying and
// cancelling bookings.
type BookingManager struct {
	store         BookingStore
	notifier      Notifier
	notifyTimeout time.Duration
	now           func() time.Time
}

func NewBookingManager(store BookingStore, notifier Notifier) *BookingManager {
	return &BookingManager{
		store:         store,
		notifier:      notifier,
		notifyTimeout: 15 * time.Second,
		now:           time.Now,
	}
}

func (in CreateBookingInput) validate() error {
	fields := map[string]string{}
	if in.Date.IsZero() {
		fields["date"] = "is required"
	}
	if in.VenueID == 0 {
		fields["venueId"] = "is required"
	}
	if in.TimeSlotID == 0 {
		fields["timeSlotId"] = "is required"
	}
	for _, id := range in.ServiceIDs {
		if id == 0 {
			fields["serviceIds"] = "must contain positive ids"
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create validates the referenced venue, time slot and services, checks
// the slot, prices the booking from the current catalog and writes the
// booking with its line items in one transaction.  The confirmation is
// sent after commit and its outcome only sets CreateResult.EmailSent.
func (m *BookingManager) Create(ctx context.Context, in CreateBookingInput, by Requester) (CreateResult, error) {
	if err := in.validate(); err != nil {
		return CreateResult{}, err
	}
	ownerID := by.UserID
	if in.UserID != 0 && in.UserID != by.UserID {
		if !by.Role.Privileged() {
			return CreateResult{}, forbidden("only staff may book on behalf of another user")
		}
		ownerID = in.UserID
	}

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return CreateResult{}, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	pricing := NewPricingResolver(tx, tx)

	venue, err := pricing.PriceVenue(ctx, in.VenueID)
	if err != nil {
		return CreateResult{}, err
	}
	slot, err := findTimeSlot(ctx, tx, in.TimeSlotID)
	if err != nil {
		return CreateResult{}, err
	}
	services, err := pricing.PriceServices(ctx, in.ServiceIDs)
	if err != nil {
		return CreateResult{}, err
	}
	if ownerID != by.UserID {
		if _, err := findUser(ctx, tx, ownerID); err != nil {
			return CreateResult{}, err
		}
	}

	target := model.Slot{Date: in.Date, VenueID: venue.ID, TimeSlotID: slot.ID}
	taken, err := NewAvailabilityChecker(tx).IsSlotTaken(ctx, target, 0)
	if err != nil {
		return CreateResult{}, err
	}
	if taken {
		return CreateResult{}, slotConflict(target)
	}

	b := &model.Booking{
		Date:       in.Date,
		VenueID:    venue.ID,
		UserID:     ownerID,
		TimeSlotID: slot.ID,
		Theme:      in.Theme,
		Photo:      in.Photo,
		VenuePrice: venue.Price,
		Total:      ComputeTotal(venue.Price, servicePrices(services)...),
	}
	if err := tx.InsertBooking(ctx, b); err != nil {
		return CreateResult{}, mapTxWriteErr(err, target)
	}
	if err := tx.InsertLineItems(ctx, lineItems(b.ID, services)); err != nil {
		return CreateResult{}, mapTxWriteErr(err, target)
	}
	if err := tx.Commit(); err != nil {
		return CreateResult{}, mapTxWriteErr(err, target)
	}
	committed = true

	log.Info().Uint64("booking_id", b.ID).Uint64("user_id", ownerID).
		Str("date", b.Date.String()).Uint64("venue_id", b.VenueID).Uint64("time_slot_id", b.TimeSlotID).
		Str("total", b.Total.String()).Msg("booking created")

	summary := model.BookingSummary{
		BookingID:   b.ID,
		Date:        b.Date,
		VenueID:     venue.ID,
		VenueTitle:  venue.Title,
		TimeSlotID:  slot.ID,
		SlotStart:   slot.StartTime,
		SlotEnd:     slot.EndTime,
		VenuePrice:  b.VenuePrice,
		Total:       b.Total,
		Services:    summaryServices(services),
		ConfirmedAt: m.now().UTC(),
	}
	if b.Theme != nil {
		summary.Theme = *b.Theme
	}
	return CreateResult{BookingID: b.ID, EmailSent: m.confirm(ctx, ownerID, summary)}, nil
}

// confirm sends the confirmation outside the transaction.  Failures are
// logged and reported as false; they are never retried here.
func (m *BookingManager) confirm(ctx context.Context, ownerID uint64, summary model.BookingSummary) bool {
	if m.notifier == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.notifyTimeout)
	defer cancel()

	owner, err := m.store.FindUser(ctx, ownerID)
	if err != nil {
		log.Warn().Err(err).Uint64("booking_id", summary.BookingID).Msg("confirmation skipped: owner lookup failed")
		return false
	}
	summary.CustomerName = owner.Name + " " + owner.Surname
	sent := m.notifier.Send(ctx, owner.Username, summary)
	if !sent {
		log.Warn().Uint64("booking_id", summary.BookingID).Str("recipient", owner.Username).Msg("confirmation not sent")
	}
	return sent
}

// Modify applies patch to an active booking.  When serviceIDs is non-nil
// the line items are replaced wholesale by freshly priced ones.  The
// total is recomputed whenever the venue or the service set changes;
// otherwise the stored snapshot is kept.  It returns false when the
// booking does not exist or is no longer active.
func (m *BookingManager) Modify(ctx context.Context, bookingID uint64, patch model.BookingPatch, serviceIDs *[]uint64, by Requester) (bool, error) {
	if err := validatePatch(patch, serviceIDs); err != nil {
		return false, err
	}
	if patch.UserID != nil && by.Role != model.RoleAdmin {
		return false, forbidden("only an admin may reassign a booking")
	}

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	current, err := tx.LockBooking(ctx, bookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return false, nil
	}
	if errors.Is(err, repository.ErrLockConflict) {
		return false, conflict("booking %d is being changed by another request", bookingID)
	}
	if err != nil {
		return false, err
	}
	if patch.Empty() && serviceIDs == nil {
		return true, nil
	}

	next := *current
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if patch.Theme != nil {
		next.Theme = patch.Theme
	}
	if patch.Photo != nil {
		next.Photo = patch.Photo
	}

	pricing := NewPricingResolver(tx, tx)
	venueChanged := patch.VenueID != nil && *patch.VenueID != current.VenueID
	if venueChanged {
		venue, err := pricing.PriceVenue(ctx, *patch.VenueID)
		if err != nil {
			return false, err
		}
		next.VenueID = venue.ID
		next.VenuePrice = venue.Price
	}
	if patch.TimeSlotID != nil && *patch.TimeSlotID != current.TimeSlotID {
		slot, err := findTimeSlot(ctx, tx, *patch.TimeSlotID)
		if err != nil {
			return false, err
		}
		next.TimeSlotID = slot.ID
	}
	if patch.UserID != nil && *patch.UserID != current.UserID {
		owner, err := findUser(ctx, tx, *patch.UserID)
		if err != nil {
			return false, err
		}
		next.UserID = owner.ID
	}

	var replacement []ServicePrice
	if serviceIDs != nil {
		if replacement, err = pricing.PriceServices(ctx, *serviceIDs); err != nil {
			return false, err
		}
	}

	target := next.Slot()
	if !target.Equal(current.Slot()) {
		taken, err := NewAvailabilityChecker(tx).IsSlotTaken(ctx, target, bookingID)
		if err != nil {
			return false, err
		}
		if taken {
			return false, slotConflict(target)
		}
	}

	switch {
	case serviceIDs != nil:
		next.Total = ComputeTotal(next.VenuePrice, servicePrices(replacement)...)
	case venueChanged:
		kept, err := tx.LineItems(ctx, bookingID)
		if err != nil {
			return false, err
		}
		prices := make([]decimal.Decimal, 0, len(kept))
		for _, it := range kept {
			prices = append(prices, it.Price)
		}
		next.Total = ComputeTotal(next.VenuePrice, prices...)
	}

	if err := tx.UpdateBooking(ctx, &next); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return false, nil
		}
		return false, mapTxWriteErr(err, target)
	}
	if serviceIDs != nil {
		if err := tx.DeleteLineItems(ctx, bookingID); err != nil {
			return false, err
		}
		if err := tx.InsertLineItems(ctx, lineItems(bookingID, replacement)); err != nil {
			return false, mapTxWriteErr(err, target)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, mapTxWriteErr(err, target)
	}
	committed = true

	log.Info().Uint64("booking_id", bookingID).Uint64("by", by.UserID).
		Bool("services_replaced", serviceIDs != nil).Str("total", next.Total.String()).Msg("booking modified")
	return true, nil
}

func validatePatch(p model.BookingPatch, serviceIDs *[]uint64) error {
	fields := map[string]string{}
	if p.VenueID != nil && *p.VenueID == 0 {
		fields["venueId"] = "must be a positive id"
	}
	if p.TimeSlotID != nil && *p.TimeSlotID == 0 {
		fields["timeSlotId"] = "must be a positive id"
	}
	if p.UserID != nil && *p.UserID == 0 {
		fields["userId"] = "must be a positive id"
	}
	if p.Date != nil && p.Date.IsZero() {
		fields["date"] = "must be a valid date"
	}
	if serviceIDs != nil {
		for _, id := range *serviceIDs {
			if id == 0 {
				fields["serviceIds"] = "must contain positive ids"
				break
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Cancel soft-deletes an active booking.  A second cancel of the same
// booking returns false.
func (m *BookingManager) Cancel(ctx context.Context, bookingID uint64) (bool, error) {
	ok, err := m.store.Deactivate(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if ok {
		log.Info().Uint64("booking_id", bookingID).Msg("booking cancelled")
	}
	return ok, nil
}

// GetByID returns an active booking.  Clients only see their own bookings;
// anything else is reported as not found.
func (m *BookingManager) GetByID(ctx context.Context, bookingID uint64, by Requester) (*model.BookingDetail, error) {
	d, err := m.store.FindDetail(ctx, bookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, notFound("booking %d", bookingID)
	}
	if err != nil {
		return nil, err
	}
	if !by.Role.Privileged() && d.UserID != by.UserID {
		return nil, notFound("booking %d", bookingID)
	}
	return d, nil
}

// IsAvailable reports whether slot is free right now.  The answer is
// advisory; Create checks again under lock.
func (m *BookingManager) IsAvailable(ctx context.Context, slot model.Slot) (bool, error) {
	if slot.Date.IsZero() || slot.VenueID == 0 || slot.TimeSlotID == 0 {
		return false, invalid("slot", "date, venueId and timeSlotId are required")
	}
	taken, err := NewAvailabilityChecker(m.store).IsSlotTaken(ctx, slot, 0)
	return !taken, err
}

// ListAll returns every active booking, newest date first.
func (m *BookingManager) ListAll(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	return m.store.ListDetails(ctx, f)
}

// ListByUser returns the active bookings owned by userID.
func (m *BookingManager) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return m.store.ListDetails(ctx, model.BookingFilter{UserID: userID})
}

func findTimeSlot(ctx context.Context, tx BookingTx, id uint64) (*model.TimeSlot, error) {
	t, err := tx.FindTimeSlot(ctx, id)
	if errors.Is(err, repository.ErrTimeSlotNotFound) {
		return nil, notFound("time slot %d does not exist or is inactive", id)
	}
	return t, err
}

func findUser(ctx context.Context, tx BookingTx, id uint64) (*model.User, error) {
	u, err := tx.FindUser(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, notFound("user %d does not exist or is inactive", id)
	}
	return u, err
}

func slotConflict(s model.Slot) error {
	return conflict("venue %d is already booked on %s for time slot %d", s.VenueID, s.Date, s.TimeSlotID)
}

// mapTxWriteErr turns storage-level uniqueness and locking failures into
// the workflow's error kinds.
func mapTxWriteErr(err error, s model.Slot) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrLockConflict):
		return slotConflict(s)
	case errors.Is(err, repository.ErrMissingReference):
		return notFound("a referenced record no longer exists")
	}
	return err
}

func servicePrices(s []ServicePrice) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(s))
	for _, sp := range s {
		out = append(out, sp.Price)
	}
	return out
}

func lineItems(bookingID uint64, s []ServicePrice) []model.BookingLineItem {
	out := make([]model.BookingLineItem, 0, len(s))
	for _, sp := range s {
		out = append(out, model.BookingLineItem{BookingID: bookingID, ServiceID: sp.ID, Price: sp.Price})
	}
	return out
}

func summaryServices(s []ServicePrice) []model.BookingService {
	out := make([]model.BookingService, 0, len(s))
	for _, sp := range s {
		out = append(out, model.BookingService{ServiceID: sp.ID, Description: sp.Description, Price: sp.Price})
	}
	return out
}
