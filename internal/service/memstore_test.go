package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
)

// memStore is an in-memory BookingStore.  Transactions are serialised by
// txLock and write to private copies that only reach the store on Commit,
// which mirrors the isolation the MySQL store gets from row locks.
type memStore struct {
	txLock sync.Mutex

	mu       sync.Mutex
	venues   map[uint64]model.Venue
	services map[uint64]model.Service
	slots    map[uint64]model.TimeSlot
	users    map[uint64]model.User
	bookings map[uint64]model.Booking
	items    map[uint64][]model.BookingLineItem
	nextID   uint64

	failLineItems error
	commits       int
	rollbacks     int
}

func newMemStore() *memStore {
	return &memStore{
		venues:   map[uint64]model.Venue{},
		services: map[uint64]model.Service{},
		slots:    map[uint64]model.TimeSlot{},
		users:    map[uint64]model.User{},
		bookings: map[uint64]model.Booking{},
		items:    map[uint64][]model.BookingLineItem{},
	}
}

func (s *memStore) activeBookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

func (s *memStore) lineItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += len(it)
	}
	return n
}

func (s *memStore) Begin(ctx context.Context) (BookingTx, error) {
	s.txLock.Lock()
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{
		store:    s,
		bookings: make(map[uint64]model.Booking, len(s.bookings)),
		items:    make(map[uint64][]model.BookingLineItem, len(s.items)),
		nextID:   s.nextID,
	}
	for k, v := range s.bookings {
		tx.bookings[k] = v
	}
	for k, v := range s.items {
		tx.items[k] = append([]model.BookingLineItem(nil), v...)
	}
	return tx, nil
}

func (s *memStore) SlotTaken(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slotTaken(s.bookings, slot, excludeID), nil
}

func (s *memStore) FindDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || !b.Active {
		return nil, repository.ErrBookingNotFound
	}
	d := s.detail(b)
	return &d, nil
}

func (s *memStore) ListDetails(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range s.bookings {
		if !b.Active || (f.UserID != 0 && b.UserID != f.UserID) {
			continue
		}
		if f.Date != nil && !b.Date.Equal(*f.Date) {
			continue
		}
		out = append(out, s.detail(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) detail(b model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: b, VenueTitle: s.venues[b.VenueID].Title, Services: []model.BookingService{}}
	for _, it := range s.items[b.ID] {
		d.Services = append(d.Services, model.BookingService{
			ServiceID:   it.ServiceID,
			Description: s.services[it.ServiceID].Description,
			Price:       it.Price,
		})
	}
	return d
}

func (s *memStore) Deactivate(ctx context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || !b.Active {
		return false, nil
	}
	b.Active = false
	s.bookings[id] = b
	return true, nil
}

func (s *memStore) FindUser(ctx context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.Active {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func slotTaken(bookings map[uint64]model.Booking, slot model.Slot, excludeID uint64) bool {
	for id, b := range bookings {
		if b.Active && id != excludeID && b.Slot().Equal(slot) {
			return true
		}
	}
	return false
}

type memTx struct {
	store    *memStore
	bookings map[uint64]model.Booking
	items    map[uint64][]model.BookingLineItem
	nextID   uint64
	done     bool
}

var errTxDone = errors.New("transaction already finished")

func (t *memTx) FindVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	v, ok := t.store.venues[id]
	if !ok || !v.Active {
		return nil, repository.ErrVenueNotFound
	}
	return &v, nil
}

func (t *memTx) FindServices(ctx context.Context, ids []uint64) ([]model.Service, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	out := []model.Service{}
	for _, id := range ids {
		if s, ok := t.store.services[id]; ok && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *memTx) FindTimeSlot(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	s, ok := t.store.slots[id]
	if !ok || !s.Active {
		return nil, repository.ErrTimeSlotNotFound
	}
	return &s, nil
}

func (t *memTx) FindUser(ctx context.Context, id uint64) (*model.User, error) {
	return t.store.FindUser(ctx, id)
}

func (t *memTx) SlotTaken(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error) {
	return slotTaken(t.bookings, slot, excludeID), nil
}

func (t *memTx) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, ok := t.bookings[id]
	if !ok || !b.Active {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (t *memTx) LineItems(ctx context.Context, bookingID uint64) ([]model.BookingLineItem, error) {
	return append([]model.BookingLineItem{}, t.items[bookingID]...), nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	if slotTaken(t.bookings, b.Slot(), 0) {
		return repository.ErrDuplicate
	}
	t.nextID++
	b.ID = t.nextID
	b.Active = true
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	cur, ok := t.bookings[b.ID]
	if !ok || !cur.Active {
		return repository.ErrBookingNotFound
	}
	if slotTaken(t.bookings, b.Slot(), b.ID) {
		return repository.ErrDuplicate
	}
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) InsertLineItems(ctx context.Context, items []model.BookingLineItem) error {
	if t.store.failLineItems != nil {
		return t.store.failLineItems
	}
	for _, it := range items {
		t.items[it.BookingID] = append(t.items[it.BookingID], it)
	}
	return nil
}

func (t *memTx) DeleteLineItems(ctx context.Context, bookingID uint64) error {
	delete(t.items, bookingID)
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.bookings = t.bookings
	t.store.items = t.items
	t.store.nextID = t.nextID
	t.store.commits++
	t.store.mu.Unlock()
	t.store.txLock.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
	t.store.txLock.Unlock()
	return nil
}

// recordingNotifier captures confirmations.
type recordingNotifier struct {
	mu     sync.Mutex
	result bool
	sent   []notification
}

type notification struct {
	recipient string
	summary   model.BookingSummary
}

func (n *recordingNotifier) Send(ctx context.Context, recipient string, summary model.BookingSummary) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{recipient: recipient, summary: summary})
	return n.result
}
