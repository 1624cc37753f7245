package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/response"
	"github.com/iliyamo/salon-reservation/internal/service"
)

// BookingService is the part of service.BookingManager the HTTP layer uses.
type BookingService interface {
	Create(ctx context.Context, in service.CreateBookingInput, by service.Requester) (service.CreateResult, error)
	Modify(ctx context.Context, id uint64, patch model.BookingPatch, serviceIDs *[]uint64, by service.Requester) (bool, error)
	Cancel(ctx context.Context, id uint64) (bool, error)
	GetByID(ctx context.Context, id uint64, by service.Requester) (*model.BookingDetail, error)
	IsAvailable(ctx context.Context, slot model.Slot) (bool, error)
	ListAll(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
}

type BookingHandler struct {
	Bookings BookingService
}

func NewBookingHandler(b BookingService) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
	Date       string   `json:"date" validate:"required,date"`
	VenueID    uint64   `json:"venueId" validate:"required"`
	TimeSlotID uint64   `json:"timeSlotId" validate:"required"`
	Theme      *string  `json:"theme" validate:"omitempty,max=255"`
	Photo      *string  `json:"photo" validate:"omitempty,max=512"`
	ServiceIDs []uint64 `json:"serviceIds" validate:"dive,gt=0"`
	UserID     uint64   `json:"userId"`
}

// updateBookingReq leaves absent fields nil.  A present serviceIds, even
// an empty list, replaces the booking's services.
type updateBookingReq struct {
	Date       *string   `json:"date" validate:"omitempty,date"`
	VenueID    *uint64   `json:"venueId" validate:"omitempty,gt=0"`
	TimeSlotID *uint64   `json:"timeSlotId" validate:"omitempty,gt=0"`
	UserID     *uint64   `json:"userId" validate:"omitempty,gt=0"`
	Theme      *string   `json:"theme" validate:"omitempty,max=255"`
	Photo      *string   `json:"photo" validate:"omitempty,max=512"`
	ServiceIDs *[]uint64 `json:"serviceIds" validate:"omitempty,dive,gt=0"`
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	var req createBookingReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	date, _ := model.ParseDate(req.Date)
	res, err := h.Bookings.Create(c.Request().Context(), service.CreateBookingInput{
		Date:       date,
		VenueID:    req.VenueID,
		TimeSlotID: req.TimeSlotID,
		Theme:      req.Theme,
		Photo:      req.Photo,
		ServiceIDs: req.ServiceIDs,
		UserID:     req.UserID,
	}, by)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusCreated, res)
}

// List handles GET /bookings with optional userId and date filters.
func (h *BookingHandler) List(c echo.Context) error {
	var f model.BookingFilter
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return response.Invalid(c, map[string]string{"userId": "must be a positive integer"})
		}
		f.UserID = id
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return response.Invalid(c, map[string]string{"date": "must be a date as YYYY-MM-DD"})
	}
	f.Date = date
	items, err := h.Bookings.ListAll(c.Request().Context(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

// Mine handles GET /bookings/mine.
func (h *BookingHandler) Mine(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), by.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	d, err := h.Bookings.GetByID(c.Request().Context(), id, by)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, d)
}

// Update handles PUT /bookings/:id.
func (h *BookingHandler) Update(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req updateBookingReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	patch := model.BookingPatch{
		VenueID:    req.VenueID,
		TimeSlotID: req.TimeSlotID,
		UserID:     req.UserID,
		Theme:      req.Theme,
		Photo:      req.Photo,
	}
	if req.Date != nil {
		d, _ := model.ParseDate(*req.Date)
		patch.Date = &d
	}
	updated, err := h.Bookings.Modify(c.Request().Context(), id, patch, req.ServiceIDs, by)
	if err != nil {
		return response.FromError(c, err)
	}
	if !updated {
		return response.Fail(c, http.StatusNotFound, response.KindNotFound, "booking not found", nil)
	}
	return response.OK(c, http.StatusOK, map[string]bool{"updated": true})
}

// Delete handles DELETE /bookings/:id.  Cancelling an inactive booking
// reports 404.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	cancelled, err := h.Bookings.Cancel(c.Request().Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return deleted(c, "booking", cancelled)
}

// Availability handles GET /bookings/availability?date=&venueId=&timeSlotId=.
func (h *BookingHandler) Availability(c echo.Context) error {
	fields := map[string]string{}
	date, ok := queryDate(c, "date")
	if !ok || date == nil {
		fields["date"] = "must be a date as YYYY-MM-DD"
	}
	venueID, err := strconv.ParseUint(c.QueryParam("venueId"), 10, 64)
	if err != nil || venueID == 0 {
		fields["venueId"] = "must be a positive integer"
	}
	slotID, err := strconv.ParseUint(c.QueryParam("timeSlotId"), 10, 64)
	if err != nil || slotID == 0 {
		fields["timeSlotId"] = "must be a positive integer"
	}
	if len(fields) > 0 {
		return response.Invalid(c, fields)
	}
	free, err := h.Bookings.IsAvailable(c.Request().Context(), model.Slot{Date: *date, VenueID: venueID, TimeSlotID: slotID})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, map[string]bool{"available": free})
}
