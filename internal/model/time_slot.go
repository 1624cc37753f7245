package model

import "time"

// TimeSlot is one of the fixed daily windows a venue can be booked for.
// StartTime and EndTime hold the TIME columns as "HH:MM:SS".
//
// Fields:
//
//	ID        – primary key identifier.
//	Position  – display order, ascending.
//	StartTime – start of the window.
//	EndTime   – end of the window.
//	Active    – false once soft-deleted.
type TimeSlot struct {
	ID        uint64     `db:"id" json:"id"`                // time_slots.id
	Position  int        `db:"position" json:"position"`    // time_slots.position
	StartTime string     `db:"start_time" json:"startTime"` // time_slots.start_time
	EndTime   string     `db:"end_time" json:"endTime"`     // time_slots.end_time
	Active    bool       `db:"active" json:"-"`             // time_slots.active
	CreatedAt time.Time  `db:"created_at" json:"createdAt"` // time_slots.created_at
	UpdatedAt *time.Time `db:"updated_at" json:"updatedAt"` // time_slots.updated_at (nullable)
}

type TimeSlotPatch struct {
	Position  *int    `json:"position" validate:"omitempty,gte=0"`
	StartTime *string `json:"startTime" validate:"omitempty,clock"`
	EndTime   *string `json:"endTime" validate:"omitempty,clock"`
}
