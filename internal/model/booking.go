package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is a reservation of one venue for one time slot on one date.
// VenuePrice and Total are snapshots taken when the booking was written
// and never follow later catalog price changes.
//
// Fields:
//
//	ID         – primary key identifier.
//	Date       – booked calendar date.
//	VenueID    – booked venue.
//	UserID     – owner of the booking.
//	TimeSlotID – booked time slot.
//	Theme      – optional party theme.
//	Photo      – optional photo URL.
//	VenuePrice – venue price at write time.
//	Total      – venue price plus every line item at write time.
//	Active     – false once cancelled.
type Booking struct {
	ID         uint64          `db:"id" json:"id"`                   // bookings.id
	Date       Date            `db:"booking_date" json:"date"`       // bookings.booking_date
	VenueID    uint64          `db:"venue_id" json:"venueId"`        // bookings.venue_id
	UserID     uint64          `db:"user_id" json:"userId"`          // bookings.user_id
	TimeSlotID uint64          `db:"time_slot_id" json:"timeSlotId"` // bookings.time_slot_id
	Theme      *string         `db:"theme" json:"theme"`             // bookings.theme (nullable)
	Photo      *string         `db:"photo" json:"photo"`             // bookings.photo (nullable)
	VenuePrice decimal.Decimal `db:"venue_price" json:"venuePrice"`  // bookings.venue_price
	Total      decimal.Decimal `db:"total" json:"total"`             // bookings.total
	Active     bool            `db:"active" json:"active"`           // bookings.active
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`    // bookings.created_at
	UpdatedAt  *time.Time      `db:"updated_at" json:"updatedAt"`    // bookings.updated_at (nullable)
}

// Slot returns the (date, venue, time slot) triple the booking occupies.
func (b Booking) Slot() Slot {
	return Slot{Date: b.Date, VenueID: b.VenueID, TimeSlotID: b.TimeSlotID}
}

// Slot identifies a bookable unit.  At most one active booking may hold a
// given slot.
type Slot struct {
	Date       Date
	VenueID    uint64
	TimeSlotID uint64
}

func (s Slot) Equal(o Slot) bool {
	return s.Date.Equal(o.Date) && s.VenueID == o.VenueID && s.TimeSlotID == o.TimeSlotID
}

// BookingLineItem attaches one service to one booking with the service
// price frozen at write time.
type BookingLineItem struct {
	BookingID uint64          `db:"booking_id"` // booking_services.booking_id
	ServiceID uint64          `db:"service_id"` // booking_services.service_id
	Price     decimal.Decimal `db:"price"`      // booking_services.price
}

// BookingPatch holds the booking fields a modification may change.  Nil
// fields keep their stored value.
type BookingPatch struct {
	Date       *Date
	VenueID    *uint64
	TimeSlotID *uint64
	UserID     *uint64
	Theme      *string
	Photo      *string
}

// Empty reports whether the patch changes nothing.
func (p BookingPatch) Empty() bool {
	return p.Date == nil && p.VenueID == nil && p.TimeSlotID == nil &&
		p.UserID == nil && p.Theme == nil && p.Photo == nil
}

// BookingService is one line item as shown to API clients.
type BookingService struct {
	ServiceID   uint64          `json:"serviceId"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// BookingDetail is a booking joined with the display names of what it
// references and its line items regrouped into Services.
type BookingDetail struct {
	Booking
	VenueTitle    string           `json:"venueTitle"`
	SlotStart     string           `json:"slotStart"`
	SlotEnd       string           `json:"slotEnd"`
	OwnerName     string           `json:"ownerName"`
	OwnerSurname  string           `json:"ownerSurname"`
	OwnerUsername string           `json:"ownerUsername"`
	OwnerPhone    *string          `json:"ownerPhone"`
	Services      []BookingService `json:"services"`
}

// BookingFilter narrows booking listings.  Zero values mean "any".
type BookingFilter struct {
	UserID uint64
	Date   *Date
}

// BookingSummary is what a confirmation message is rendered from.
type BookingSummary struct {
	BookingID    uint64           `json:"bookingId"`
	Date         Date             `json:"date"`
	VenueID      uint64           `json:"venueId"`
	VenueTitle   string           `json:"venueTitle"`
	TimeSlotID   uint64           `json:"timeSlotId"`
	SlotStart    string           `json:"slotStart"`
	SlotEnd      string           `json:"slotEnd"`
	Theme        string           `json:"theme,omitempty"`
	CustomerName string           `json:"customerName"`
	VenuePrice   decimal.Decimal  `json:"venuePrice"`
	Total        decimal.Decimal  `json:"total"`
	Services     []BookingService `json:"services"`
	ConfirmedAt  time.Time        `json:"confirmedAt"`
}
