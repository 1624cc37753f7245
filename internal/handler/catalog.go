package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/response"
)

// VenueStore is implemented by repository.VenueRepo.
type VenueStore interface {
	ListActive(ctx context.Context) ([]model.Venue, error)
	FindActive(ctx context.Context, id uint64) (*model.Venue, error)
	Create(ctx context.Context, v *model.Venue) error
	Update(ctx context.Context, id uint64, p model.VenuePatch) error
	Deactivate(ctx context.Context, id uint64) (bool, error)
}

// ServiceStore is implemented by repository.ServiceRepo.
type ServiceStore interface {
	ListActive(ctx context.Context) ([]model.Service, error)
	FindActive(ctx context.Context, id uint64) (*model.Service, error)
	Create(ctx context.Context, s *model.Service) error
	Update(ctx context.Context, id uint64, p model.ServicePatch) error
	Deactivate(ctx context.Context, id uint64) (bool, error)
}

// TimeSlotStore is implemented by repository.TimeSlotRepo.
type TimeSlotStore interface {
	ListActive(ctx context.Context) ([]model.TimeSlot, error)
	FindActive(ctx context.Context, id uint64) (*model.TimeSlot, error)
	Create(ctx context.Context, t *model.TimeSlot) error
	Update(ctx context.Context, id uint64, p model.TimeSlotPatch) error
	Deactivate(ctx context.Context, id uint64) (bool, error)
}

// CatalogHandler serves CRUD for venues, services and time slots.
type CatalogHandler struct {
	Venues    VenueStore
	Services  ServiceStore
	TimeSlots TimeSlotStore
}

func NewCatalogHandler(v VenueStore, s ServiceStore, t TimeSlotStore) *CatalogHandler {
	if v == nil || s == nil || t == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Venues: v, Services: s, TimeSlots: t}
}

// ----- venues -----

type createVenueReq struct {
	Title     string           `json:"title" validate:"required,min=1,max=255"`
	Address   string           `json:"address" validate:"max=255"`
	Latitude  *float64         `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64         `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Capacity  int              `json:"capacity" validate:"gte=1"`
	Price     *decimal.Decimal `json:"price" validate:"required"`
}

func (h *CatalogHandler) ListVenues(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	items, err := h.Venues.ListActive(ctx)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

func (h *CatalogHandler) GetVenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	v, err := h.Venues.FindActive(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, v)
}

func (h *CatalogHandler) CreateVenue(c echo.Context) error {
	var req createVenueReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if fields := checkPrice(nil, "price", req.Price); fields != nil {
		return response.Invalid(c, fields)
	}
	v := &model.Venue{
		Title:     req.Title,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Capacity:  req.Capacity,
		Price:     *req.Price,
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Venues.Create(ctx, v); err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusCreated, v)
}

func (h *CatalogHandler) UpdateVenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var p model.VenuePatch
	if ok, err := bind(c, &p); !ok {
		return err
	}
	if fields := checkPrice(nil, "price", p.Price); fields != nil {
		return response.Invalid(c, fields)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Venues.Update(ctx, id, p); err != nil {
		return storeError(c, err)
	}
	v, err := h.Venues.FindActive(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, v)
}

func (h *CatalogHandler) DeleteVenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	done, err := h.Venues.Deactivate(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return deleted(c, "venue", done)
}

// ----- services -----

type createServiceReq struct {
	Description string           `json:"description" validate:"required,min=1,max=255"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
}

func (h *CatalogHandler) ListServices(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	items, err := h.Services.ListActive(ctx)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

func (h *CatalogHandler) GetService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	s, err := h.Services.FindActive(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, s)
}

func (h *CatalogHandler) CreateService(c echo.Context) error {
	var req createServiceReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if fields := checkPrice(nil, "price", req.Price); fields != nil {
		return response.Invalid(c, fields)
	}
	s := &model.Service{Description: req.Description, Price: *req.Price}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Services.Create(ctx, s); err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusCreated, s)
}

func (h *CatalogHandler) UpdateService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var p model.ServicePatch
	if ok, err := bind(c, &p); !ok {
		return err
	}
	if fields := checkPrice(nil, "price", p.Price); fields != nil {
		return response.Invalid(c, fields)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Services.Update(ctx, id, p); err != nil {
		return storeError(c, err)
	}
	s, err := h.Services.FindActive(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, s)
}

func (h *CatalogHandler) DeleteService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	done, err := h.Services.Deactivate(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return deleted(c, "service", done)
}

// ----- time slots -----

type createTimeSlotReq struct {
	Position  int    `json:"position" validate:"gte=0"`
	StartTime string `json:"startTime" validate:"required,clock"`
	EndTime   string `json:"endTime" validate:"required,clock"`
}

// clockOf parses HH:MM or HH:MM:SS; the validator has already accepted it.
func clockOf(s string) time.Time {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t
	}
	t, _ := time.Parse("15:04", s)
	return t
}

func slotOrderError(start, end string) map[string]string {
	if clockOf(start).Before(clockOf(end)) {
		return nil
	}
	return map[string]string{"endTime": "must be after startTime"}
}

// ListTimeSlots returns slots in display order.
func (h *CatalogHandler) ListTimeSlots(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	items, err := h.TimeSlots.ListActive(ctx)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

func (h *CatalogHandler) GetTimeSlot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	t, err := h.TimeSlots.FindActive(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, t)
}

func (h *CatalogHandler) CreateTimeSlot(c echo.Context) error {
	var req createTimeSlotReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if fields := slotOrderError(req.StartTime, req.EndTime); fields != nil {
		return response.Invalid(c, fields)
	}
	t := &model.TimeSlot{Position: req.Position, StartTime: req.StartTime, EndTime: req.EndTime}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.TimeSlots.Create(ctx, t); err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusCreated, t)
}

// UpdateTimeSlot checks start < end against the merged slot, so changing
// only one end is validated too.
func (h *CatalogHandler) UpdateTimeSlot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var p model.TimeSlotPatch
	if ok, err := bind(c, &p); !ok {
		return err
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if p.StartTime != nil || p.EndTime != nil {
		cur, err := h.TimeSlots.FindActive(ctx, id)
		if err != nil {
			return storeError(c, err)
		}
		start, end := cur.StartTime, cur.EndTime
		if p.StartTime != nil {
			start = *p.StartTime
		}
		if p.EndTime != nil {
			end = *p.EndTime
		}
		if fields := slotOrderError(start, end); fields != nil {
			return response.Invalid(c, fields)
		}
	}
	if err := h.TimeSlots.Update(ctx, id, p); err != nil {
		return storeError(c, err)
	}
	t, err := h.TimeSlots.FindActive(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return response.OK(c, http.StatusOK, t)
}

func (h *CatalogHandler) DeleteTimeSlot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	done, err := h.TimeSlots.Deactivate(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return deleted(c, "time slot", done)
}
