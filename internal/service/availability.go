package service

import (
	"context"
	"errors"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
)

// SlotReader looks up active bookings occupying a slot.
type SlotReader interface {
	SlotTaken(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error)
}

// AvailabilityChecker answers whether a (date, venue, time slot) triple is
// already held by an active booking.  It has no side effects beyond the
// locks its reader takes inside a transaction.
type AvailabilityChecker struct {
	slots SlotReader
}

func NewAvailabilityChecker(slots SlotReader) *AvailabilityChecker {
	return &AvailabilityChecker{slots: slots}
}

// IsSlotTaken reports a conflict for slot.  excludeBookingID, when non-zero,
// is ignored in the match so a booking can be updated in place.
func (a *AvailabilityChecker) IsSlotTaken(ctx context.Context, slot model.Slot, excludeBookingID uint64) (bool, error) {
	taken, err := a.slots.SlotTaken(ctx, slot, excludeBookingID)
	if errors.Is(err, repository.ErrLockConflict) {
		return true, nil
	}
	return taken, err
}
