package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venue represents a rentable salón as stored in the `venues` table.
// Once a booking references a venue only its price and active flag are
// expected to change; bookings keep their own price snapshot.
//
// Fields:
//
//	ID        – primary key identifier.
//	Title     – display name.
//	Address   – street address.
//	Latitude  – optional geo coordinate.
//	Longitude – optional geo coordinate.
//	Capacity  – maximum number of guests.
//	Price     – current rental price for one time slot.
//	Active    – false once soft-deleted.
type Venue struct {
	ID        uint64          `db:"id" json:"id"`                // venues.id
	Title     string          `db:"title" json:"title"`          // venues.title
	Address   string          `db:"address" json:"address"`      // venues.address
	Latitude  *float64        `db:"latitude" json:"latitude"`    // venues.latitude (nullable)
	Longitude *float64        `db:"longitude" json:"longitude"`  // venues.longitude (nullable)
	Capacity  int             `db:"capacity" json:"capacity"`    // venues.capacity
	Price     decimal.Decimal `db:"price" json:"price"`          // venues.price
	Active    bool            `db:"active" json:"-"`             // venues.active
	CreatedAt time.Time       `db:"created_at" json:"createdAt"` // venues.created_at
	UpdatedAt *time.Time      `db:"updated_at" json:"updatedAt"` // venues.updated_at (nullable)
}

// VenuePatch lists the venue columns a caller may change.  Nil fields keep
// their stored value.
type VenuePatch struct {
	Title     *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Address   *string          `json:"address" validate:"omitempty,max=255"`
	Latitude  *float64         `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64         `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Capacity  *int             `json:"capacity" validate:"omitempty,gte=1"`
	Price     *decimal.Decimal `json:"price"`
}
