package model

import "github.com/shopspring/decimal"

// VenueStats aggregates active bookings of one venue.
type VenueStats struct {
	VenueID    uint64          `db:"venue_id" json:"venueId"`
	VenueTitle string          `db:"venue_title" json:"venueTitle"`
	Bookings   int             `db:"bookings" json:"bookings"`
	Revenue    decimal.Decimal `db:"revenue" json:"revenue"`
}

// ReportSummary is the statistics report over active bookings in an
// optional date range.
type ReportSummary struct {
	From          *Date           `json:"from"`
	To            *Date           `json:"to"`
	Bookings      int             `json:"bookings"`
	Revenue       decimal.Decimal `json:"revenue"`
	ServicesSold  int             `json:"servicesSold"`
	ActiveClients int             `json:"activeClients"`
	Venues        []VenueStats    `json:"venues"`
}
