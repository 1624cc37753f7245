package service

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
)

// VenueReader loads active venues.  Implementations return
// repository.ErrVenueNotFound for missing or inactive ids.
type VenueReader interface {
	FindVenue(ctx context.Context, id uint64) (*model.Venue, error)
}

// ServiceReader loads the active services among ids.
type ServiceReader interface {
	FindServices(ctx context.Context, ids []uint64) ([]model.Service, error)
}

// VenuePrice is a venue's current catalog price.
type VenuePrice struct {
	ID    uint64
	Title string
	Price decimal.Decimal
}

// ServicePrice is a service's current catalog price.
type ServicePrice struct {
	ID          uint64
	Description string
	Price       decimal.Decimal
}

// PricingResolver reads current catalog prices at booking time.  Prices
// sent by clients are never trusted.
type PricingResolver struct {
	venues   VenueReader
	services ServiceReader
}

func NewPricingResolver(venues VenueReader, services ServiceReader) *PricingResolver {
	return &PricingResolver{venues: venues, services: services}
}

// PriceVenue fails with ErrNotFound when the venue is missing or inactive.
func (p *PricingResolver) PriceVenue(ctx context.Context, venueID uint64) (VenuePrice, error) {
	v, err := p.venues.FindVenue(ctx, venueID)
	if errors.Is(err, repository.ErrVenueNotFound) {
		return VenuePrice{}, notFound("venue %d does not exist or is inactive", venueID)
	}
	if err != nil {
		return VenuePrice{}, err
	}
	return VenuePrice{ID: v.ID, Title: v.Title, Price: v.Price}, nil
}

// PriceServices prices every distinct id in serviceIDs, ordered by id.  An
// empty input yields an empty result.  If any id is missing or inactive the
// whole call fails with ErrNotFound; a partial result would under-price the
// booking.
func (p *PricingResolver) PriceServices(ctx context.Context, serviceIDs []uint64) ([]ServicePrice, error) {
	ids := distinctIDs(serviceIDs)
	if len(ids) == 0 {
		return []ServicePrice{}, nil
	}
	rows, err := p.services.FindServices(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		found := make(map[uint64]bool, len(rows))
		for _, s := range rows {
			found[s.ID] = true
		}
		var missing []uint64
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, notFound("services %v do not exist or are inactive", missing)
	}
	out := make([]ServicePrice, 0, len(rows))
	for _, s := range rows {
		out = append(out, ServicePrice{ID: s.ID, Description: s.Description, Price: s.Price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ComputeTotal sums the venue price and every line price.
func ComputeTotal(venuePrice decimal.Decimal, linePrices ...decimal.Decimal) decimal.Decimal {
	return venuePrice.Add(decimal.Sum(decimal.Zero, linePrices...))
}

// distinctIDs drops duplicates and sorts ascending.
func distinctIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
