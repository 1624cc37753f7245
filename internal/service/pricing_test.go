package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
)

type catalogStub struct {
	venues   map[uint64]model.Venue
	services map[uint64]model.Service
	calls    int
}

func (c *catalogStub) FindVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	v, ok := c.venues[id]
	if !ok || !v.Active {
		return nil, repository.ErrVenueNotFound
	}
	return &v, nil
}

func (c *catalogStub) FindServices(ctx context.Context, ids []uint64) ([]model.Service, error) {
	c.calls++
	var out []model.Service
	for _, id := range ids {
		if s, ok := c.services[id]; ok && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func newCatalogStub() *catalogStub {
	return &catalogStub{
		venues: map[uint64]model.Venue{
			1: {ID: 1, Title: "Salon Sol", Price: dec("1000.50"), Active: true},
			2: {ID: 2, Title: "Old", Price: dec("1"), Active: false},
		},
		services: map[uint64]model.Service{
			2: {ID: 2, Description: "Catering", Price: dec("150"), Active: true},
			3: {ID: 3, Description: "DJ", Price: dec("200"), Active: true},
			5: {ID: 5, Description: "Retired", Price: dec("1"), Active: false},
		},
	}
}

func TestPriceVenue(t *testing.T) {
	c := newCatalogStub()
	p := NewPricingResolver(c, c)

	vp, err := p.PriceVenue(context.Background(), 1)
	if err != nil {
		t.Fatalf("price venue: %v", err)
	}
	if vp.ID != 1 || !vp.Price.Equal(dec("1000.50")) {
		t.Fatalf("unexpected venue price %+v", vp)
	}

	for _, id := range []uint64{2, 77} {
		if _, err := p.PriceVenue(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("venue %d: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestPriceServices(t *testing.T) {
	c := newCatalogStub()
	p := NewPricingResolver(c, c)
	ctx := context.Background()

	got, err := p.PriceServices(ctx, nil)
	if err != nil || len(got) != 0 || got == nil {
		t.Fatalf("empty input: expected empty non-nil result, got %v %v", got, err)
	}
	if c.calls != 0 {
		t.Fatal("empty input must not hit the store")
	}

	got, err = p.PriceServices(ctx, []uint64{3, 2, 3})
	if err != nil {
		t.Fatalf("price services: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("expected services 2 and 3 in order, got %+v", got)
	}

	_, err = p.PriceServices(ctx, []uint64{2, 5, 9})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "[5 9]") {
		t.Fatalf("error should list missing ids: %v", err)
	}
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		venue string
		lines []string
		want  string
	}{
		{"1000", nil, "1000"},
		{"1000", []string{"150", "200"}, "1350"},
		{"0.1", []string{"0.2"}, "0.3"},
		{"999.99", []string{"0.01", "0.01"}, "1000.01"},
	}
	for _, tt := range tests {
		lines := make([]decimal.Decimal, 0, len(tt.lines))
		for _, l := range tt.lines {
			lines = append(lines, dec(l))
		}
		if got := ComputeTotal(dec(tt.venue), lines...); !got.Equal(dec(tt.want)) {
			t.Errorf("ComputeTotal(%s, %v) = %s, want %s", tt.venue, tt.lines, got, tt.want)
		}
	}
}

func TestAvailabilityTreatsLockConflictAsTaken(t *testing.T) {
	a := NewAvailabilityChecker(slotReaderFunc(func(context.Context, model.Slot, uint64) (bool, error) {
		return false, repository.ErrLockConflict
	}))
	taken, err := a.IsSlotTaken(context.Background(), model.Slot{VenueID: 1, TimeSlotID: 1}, 0)
	if err != nil || !taken {
		t.Fatalf("expected (true, nil), got (%v, %v)", taken, err)
	}
}

type slotReaderFunc func(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error)

func (f slotReaderFunc) SlotTaken(ctx context.Context, slot model.Slot, excludeID uint64) (bool, error) {
	return f(ctx, slot, excludeID)
}
