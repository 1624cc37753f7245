package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
	"github.com/iliyamo/salon-reservation/internal/response"
	"github.com/iliyamo/salon-reservation/internal/service"
	"github.com/iliyamo/salon-reservation/internal/storage"
)

// newCtx builds an echo context for method/target with an optional JSON
// body.  role == "" leaves the request unauthenticated.
func newCtx(method, target, body string, userID uint64, role model.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	return c, rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func expectFail(t *testing.T, rec *httptest.ResponseRecorder, status int, kind string) response.Envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decode(t, rec)
	if env.OK || env.Error == nil || env.Error.Kind != kind {
		t.Fatalf("expected error kind %q, got %s", kind, rec.Body.String())
	}
	return env
}

// ----- booking stub -----

type bookingStub struct {
	createIn   service.CreateBookingInput
	createBy   service.Requester
	createRes  service.CreateResult
	createErr  error
	patch      model.BookingPatch
	serviceIDs *[]uint64
	modifyOK   bool
	cancelOK   bool
	filter     model.BookingFilter
	available  bool
}

func (s *bookingStub) Create(ctx context.Context, in service.CreateBookingInput, by service.Requester) (service.CreateResult, error) {
	s.createIn, s.createBy = in, by
	return s.createRes, s.createErr
}

func (s *bookingStub) Modify(ctx context.Context, id uint64, p model.BookingPatch, ids *[]uint64, by service.Requester) (bool, error) {
	s.patch, s.serviceIDs = p, ids
	return s.modifyOK, nil
}

func (s *bookingStub) Cancel(ctx context.Context, id uint64) (bool, error) { return s.cancelOK, nil }

func (s *bookingStub) GetByID(ctx context.Context, id uint64, by service.Requester) (*model.BookingDetail, error) {
	if id == 404 {
		return nil, fmt.Errorf("%w: booking %d", service.ErrNotFound, id)
	}
	return &model.BookingDetail{Booking: model.Booking{ID: id}}, nil
}

func (s *bookingStub) IsAvailable(ctx context.Context, slot model.Slot) (bool, error) {
	return s.available, nil
}

func (s *bookingStub) ListAll(ctx context.Context, f model.BookingFilter) ([]model.BookingDetail, error) {
	s.filter = f
	return []model.BookingDetail{}, nil
}

func (s *bookingStub) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	s.filter = model.BookingFilter{UserID: userID}
	return []model.BookingDetail{}, nil
}

func TestCreateBooking(t *testing.T) {
	stub := &bookingStub{createRes: service.CreateResult{BookingID: 41, EmailSent: true}}
	h := NewBookingHandler(stub)

	body := `{"date":"2025-12-15","venueId":1,"timeSlotId":2,"theme":"Jungle","serviceIds":[2,3]}`
	c, rec := newCtx(http.MethodPost, "/api/v1/bookings", body, 3, model.RoleClient)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":true,"data":{"bookingId":41,"emailSent":true}}` {
		t.Fatalf("unexpected body %s", got)
	}
	if stub.createIn.Date.String() != "2025-12-15" || stub.createIn.VenueID != 1 || len(stub.createIn.ServiceIDs) != 2 {
		t.Fatalf("input not passed through: %+v", stub.createIn)
	}
	if stub.createBy.UserID != 3 || stub.createBy.Role != model.RoleClient {
		t.Fatalf("requester taken from token, got %+v", stub.createBy)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	h := NewBookingHandler(&bookingStub{})

	c, rec := newCtx(http.MethodPost, "/api/v1/bookings", `{"venueId":1,"serviceIds":[0]}`, 3, model.RoleClient)
	_ = h.Create(c)
	env := expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	for _, f := range []string{"date", "timeSlotId"} {
		if env.Error.Details[f] == "" {
			t.Errorf("missing detail for %s: %v", f, env.Error.Details)
		}
	}

	c, rec = newCtx(http.MethodPost, "/api/v1/bookings", `{"date":"15/12/2025","venueId":1,"timeSlotId":1}`, 3, model.RoleClient)
	_ = h.Create(c)
	env = expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	if env.Error.Details["date"] == "" {
		t.Fatalf("expected date detail, got %v", env.Error.Details)
	}

	c, rec = newCtx(http.MethodPost, "/api/v1/bookings", `{`, 3, model.RoleClient)
	_ = h.Create(c)
	expectFail(t, rec, http.StatusBadRequest, response.KindBadRequest)

	c, rec = newCtx(http.MethodPost, "/api/v1/bookings", `{}`, 0, "")
	_ = h.Create(c)
	expectFail(t, rec, http.StatusUnauthorized, response.KindUnauthorized)
}

func TestCreateBookingErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{fmt.Errorf("%w: slot taken", service.ErrConflict), http.StatusConflict, response.KindConflict},
		{fmt.Errorf("%w: services [99]", service.ErrNotFound), http.StatusNotFound, response.KindNotFound},
		{fmt.Errorf("%w: not yours", service.ErrForbidden), http.StatusForbidden, response.KindForbidden},
		{fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError, response.KindInternal},
	}
	for _, tt := range tests {
		h := NewBookingHandler(&bookingStub{createErr: tt.err})
		c, rec := newCtx(http.MethodPost, "/api/v1/bookings", `{"date":"2025-12-15","venueId":1,"timeSlotId":1}`, 1, model.RoleAdmin)
		_ = h.Create(c)
		env := expectFail(t, rec, tt.status, tt.kind)
		if tt.kind == response.KindInternal && strings.Contains(env.Error.Message, "connection refused") {
			t.Fatal("internal error text leaked to the client")
		}
	}
}

func TestUpdateBookingServiceIDs(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
		wantLen int
	}{
		{"absent keeps services", `{"theme":"Pirates"}`, true, 0},
		{"empty list clears services", `{"serviceIds":[]}`, false, 0},
		{"list replaces services", `{"serviceIds":[4,2]}`, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &bookingStub{modifyOK: true}
			c, rec := newCtx(http.MethodPut, "/api/v1/bookings/7", tt.body, 2, model.RoleStaff)
			if err := NewBookingHandler(stub).Update(withID(c, "7")); err != nil {
				t.Fatal(err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if (stub.serviceIDs == nil) != tt.wantNil {
				t.Fatalf("serviceIDs nil = %v, want %v", stub.serviceIDs == nil, tt.wantNil)
			}
			if stub.serviceIDs != nil && len(*stub.serviceIDs) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(*stub.serviceIDs), tt.wantLen)
			}
		})
	}
}

func TestUpdateBookingPatchAndMissing(t *testing.T) {
	stub := &bookingStub{}
	c, rec := newCtx(http.MethodPut, "/api/v1/bookings/7", `{"date":"2026-01-02","venueId":2}`, 2, model.RoleStaff)
	_ = NewBookingHandler(stub).Update(withID(c, "7"))
	expectFail(t, rec, http.StatusNotFound, response.KindNotFound)
	if stub.patch.Date == nil || stub.patch.Date.String() != "2026-01-02" || stub.patch.VenueID == nil || *stub.patch.VenueID != 2 {
		t.Fatalf("patch not built from body: %+v", stub.patch)
	}
	if stub.patch.TimeSlotID != nil || stub.patch.Theme != nil {
		t.Fatal("absent fields must stay nil")
	}

	c, rec = newCtx(http.MethodPut, "/api/v1/bookings/x", `{}`, 2, model.RoleStaff)
	_ = NewBookingHandler(stub).Update(withID(c, "x"))
	expectFail(t, rec, http.StatusBadRequest, response.KindBadRequest)
}

func TestDeleteBooking(t *testing.T) {
	c, rec := newCtx(http.MethodDelete, "/api/v1/bookings/7", "", 1, model.RoleAdmin)
	_ = NewBookingHandler(&bookingStub{cancelOK: true}).Delete(withID(c, "7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	c, rec = newCtx(http.MethodDelete, "/api/v1/bookings/7", "", 1, model.RoleAdmin)
	_ = NewBookingHandler(&bookingStub{cancelOK: false}).Delete(withID(c, "7"))
	expectFail(t, rec, http.StatusNotFound, response.KindNotFound)
}

func TestGetAndListBookings(t *testing.T) {
	stub := &bookingStub{}
	h := NewBookingHandler(stub)

	c, rec := newCtx(http.MethodGet, "/api/v1/bookings/404", "", 3, model.RoleClient)
	_ = h.Get(withID(c, "404"))
	expectFail(t, rec, http.StatusNotFound, response.KindNotFound)

	c, rec = newCtx(http.MethodGet, "/api/v1/bookings?userId=3&date=2025-12-15", "", 1, model.RoleAdmin)
	_ = h.List(c)
	if rec.Code != http.StatusOK || stub.filter.UserID != 3 || stub.filter.Date == nil {
		t.Fatalf("list filter not applied: %d %+v", rec.Code, stub.filter)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":true,"data":[]}` {
		t.Fatalf("unexpected body %s", got)
	}

	c, rec = newCtx(http.MethodGet, "/api/v1/bookings?userId=abc", "", 1, model.RoleAdmin)
	_ = h.List(c)
	expectFail(t, rec, http.StatusBadRequest, response.KindValidation)

	c, _ = newCtx(http.MethodGet, "/api/v1/bookings/mine", "", 9, model.RoleClient)
	_ = h.Mine(c)
	if stub.filter.UserID != 9 {
		t.Fatalf("mine should list the caller's bookings, got %+v", stub.filter)
	}
}

func TestAvailability(t *testing.T) {
	h := NewBookingHandler(&bookingStub{available: true})

	c, rec := newCtx(http.MethodGet, "/api/v1/bookings/availability?date=2025-12-15&venueId=1&timeSlotId=2", "", 3, model.RoleClient)
	_ = h.Availability(c)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":true,"data":{"available":true}}` {
		t.Fatalf("unexpected body %s", got)
	}

	c, rec = newCtx(http.MethodGet, "/api/v1/bookings/availability?venueId=0", "", 3, model.RoleClient)
	_ = h.Availability(c)
	env := expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	if len(env.Error.Details) != 3 {
		t.Fatalf("expected three field errors, got %v", env.Error.Details)
	}
}

// ----- catalog -----

type venueStoreStub struct {
	created *model.Venue
	venues  map[uint64]*model.Venue
}

func (s *venueStoreStub) ListActive(ctx context.Context) ([]model.Venue, error) {
	return []model.Venue{}, nil
}

func (s *venueStoreStub) FindActive(ctx context.Context, id uint64) (*model.Venue, error) {
	if v, ok := s.venues[id]; ok {
		return v, nil
	}
	return nil, repository.ErrVenueNotFound
}

func (s *venueStoreStub) Create(ctx context.Context, v *model.Venue) error {
	v.ID = 11
	s.created = v
	return nil
}

func (s *venueStoreStub) Update(ctx context.Context, id uint64, p model.VenuePatch) error {
	if _, ok := s.venues[id]; !ok {
		return repository.ErrVenueNotFound
	}
	if p == (model.VenuePatch{}) {
		return repository.ErrNoChange
	}
	return nil
}

func (s *venueStoreStub) Deactivate(ctx context.Context, id uint64) (bool, error) {
	_, ok := s.venues[id]
	delete(s.venues, id)
	return ok, nil
}

type slotStoreStub struct {
	slot    model.TimeSlot
	updated bool
}

func (s *slotStoreStub) ListActive(ctx context.Context) ([]model.TimeSlot, error) {
	return []model.TimeSlot{s.slot}, nil
}

func (s *slotStoreStub) FindActive(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	if id != s.slot.ID {
		return nil, repository.ErrTimeSlotNotFound
	}
	cp := s.slot
	return &cp, nil
}

func (s *slotStoreStub) Create(ctx context.Context, t *model.TimeSlot) error {
	t.ID = 5
	return nil
}

func (s *slotStoreStub) Update(ctx context.Context, id uint64, p model.TimeSlotPatch) error {
	s.updated = true
	return nil
}

func (s *slotStoreStub) Deactivate(ctx context.Context, id uint64) (bool, error) { return true, nil }

type serviceStoreStub struct{}

func (serviceStoreStub) ListActive(ctx context.Context) ([]model.Service, error) {
	return []model.Service{}, nil
}

func (serviceStoreStub) FindActive(ctx context.Context, id uint64) (*model.Service, error) {
	return nil, repository.ErrServiceNotFound
}

func (serviceStoreStub) Create(ctx context.Context, s *model.Service) error { return repository.ErrDuplicate }

func (serviceStoreStub) Update(ctx context.Context, id uint64, p model.ServicePatch) error {
	return repository.ErrServiceNotFound
}

func (serviceStoreStub) Deactivate(ctx context.Context, id uint64) (bool, error) { return false, nil }

func newCatalog() (*CatalogHandler, *venueStoreStub, *slotStoreStub) {
	v := &venueStoreStub{venues: map[uint64]*model.Venue{1: {ID: 1, Title: "Salon Sol"}}}
	s := &slotStoreStub{slot: model.TimeSlot{ID: 1, StartTime: "10:00:00", EndTime: "14:00:00"}}
	return NewCatalogHandler(v, serviceStoreStub{}, s), v, s
}

func TestCreateVenue(t *testing.T) {
	h, store, _ := newCatalog()

	c, rec := newCtx(http.MethodPost, "/api/v1/venues", `{"title":"Salon Luna","capacity":80,"price":"1000.50"}`, 1, model.RoleAdmin)
	_ = h.CreateVenue(c)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.created == nil || store.created.Price.String() != "1000.5" {
		t.Fatalf("venue not created with price: %+v", store.created)
	}
	if !strings.Contains(rec.Body.String(), `"price":"1000.5"`) {
		t.Fatalf("price should serialize as a string: %s", rec.Body.String())
	}

	c, rec = newCtx(http.MethodPost, "/api/v1/venues", `{"title":"Bad","capacity":10,"price":"-1"}`, 1, model.RoleAdmin)
	_ = h.CreateVenue(c)
	env := expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	if env.Error.Details["price"] == "" {
		t.Fatalf("expected price detail, got %v", env.Error.Details)
	}

	c, rec = newCtx(http.MethodPost, "/api/v1/venues", `{"capacity":0}`, 1, model.RoleAdmin)
	_ = h.CreateVenue(c)
	env = expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	for _, f := range []string{"title", "capacity", "price"} {
		if env.Error.Details[f] == "" {
			t.Errorf("missing detail for %s: %v", f, env.Error.Details)
		}
	}
}

func TestUpdateAndDeleteVenue(t *testing.T) {
	h, _, _ := newCatalog()

	c, rec := newCtx(http.MethodPut, "/api/v1/venues/1", `{}`, 1, model.RoleAdmin)
	_ = h.UpdateVenue(withID(c, "1"))
	expectFail(t, rec, http.StatusBadRequest, response.KindValidation)

	c, rec = newCtx(http.MethodPut, "/api/v1/venues/9", `{"title":"X"}`, 1, model.RoleAdmin)
	_ = h.UpdateVenue(withID(c, "9"))
	expectFail(t, rec, http.StatusNotFound, response.KindNotFound)

	c, rec = newCtx(http.MethodDelete, "/api/v1/venues/1", "", 1, model.RoleAdmin)
	_ = h.DeleteVenue(withID(c, "1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete: %d", rec.Code)
	}
	c, rec = newCtx(http.MethodDelete, "/api/v1/venues/1", "", 1, model.RoleAdmin)
	_ = h.DeleteVenue(withID(c, "1"))
	expectFail(t, rec, http.StatusNotFound, response.KindNotFound)
}

func TestServiceStoreErrors(t *testing.T) {
	h, _, _ := newCatalog()

	c, rec := newCtx(http.MethodPost, "/api/v1/services", `{"description":"DJ","price":"200"}`, 1, model.RoleAdmin)
	_ = h.CreateService(c)
	expectFail(t, rec, http.StatusConflict, response.KindConflict)

	c, rec = newCtx(http.MethodGet, "/api/v1/services/3", "", 3, model.RoleClient)
	_ = h.GetService(withID(c, "3"))
	expectFail(t, rec, http.StatusNotFound, response.KindNotFound)
}

func TestTimeSlotOrdering(t *testing.T) {
	h, _, store := newCatalog()

	c, rec := newCtx(http.MethodPost, "/api/v1/time-slots", `{"position":1,"startTime":"18:00","endTime":"09:00"}`, 1, model.RoleAdmin)
	_ = h.CreateTimeSlot(c)
	expectFail(t, rec, http.StatusBadRequest, response.KindValidation)

	c, rec = newCtx(http.MethodPost, "/api/v1/time-slots", `{"position":1,"startTime":"25:00","endTime":"26:00"}`, 1, model.RoleAdmin)
	_ = h.CreateTimeSlot(c)
	env := expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	if env.Error.Details["startTime"] == "" {
		t.Fatalf("expected startTime detail, got %v", env.Error.Details)
	}

	// Only the start moves; it would land after the stored 14:00 end.
	c, rec = newCtx(http.MethodPut, "/api/v1/time-slots/1", `{"startTime":"15:00"}`, 1, model.RoleAdmin)
	_ = h.UpdateTimeSlot(withID(c, "1"))
	expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	if store.updated {
		t.Fatal("invalid update reached the store")
	}

	c, rec = newCtx(http.MethodPut, "/api/v1/time-slots/1", `{"startTime":"09:30"}`, 1, model.RoleAdmin)
	_ = h.UpdateTimeSlot(withID(c, "1"))
	if rec.Code != http.StatusOK || !store.updated {
		t.Fatalf("valid update: %d %s", rec.Code, rec.Body.String())
	}
}

// ----- reports -----

type reportStub struct{ from, to *model.Date }

func (r *reportStub) Summary(ctx context.Context, from, to *model.Date) (*model.ReportSummary, error) {
	r.from, r.to = from, to
	return &model.ReportSummary{From: from, To: to, Venues: []model.VenueStats{}}, nil
}

func TestReportSummary(t *testing.T) {
	stub := &reportStub{}
	h := NewReportHandler(stub)

	c, rec := newCtx(http.MethodGet, "/api/v1/reports/summary?from=2025-01-01", "", 1, model.RoleAdmin)
	_ = h.Summary(c)
	if rec.Code != http.StatusOK || stub.from == nil || stub.to != nil {
		t.Fatalf("unexpected %d from=%v to=%v", rec.Code, stub.from, stub.to)
	}

	c, rec = newCtx(http.MethodGet, "/api/v1/reports/summary?from=2025-02-01&to=2025-01-01", "", 1, model.RoleAdmin)
	_ = h.Summary(c)
	expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
}

// ----- auth -----

type authStub struct {
	issued *model.User
}

func (a *authStub) Login(ctx context.Context, username, password string) (*service.Session, error) {
	return nil, fmt.Errorf("%w: invalid credentials", service.ErrUnauthorized)
}

func (a *authStub) Issue(ctx context.Context, u *model.User) (*service.Session, error) {
	a.issued = u
	return &service.Session{User: u}, nil
}

func (a *authStub) Refresh(ctx context.Context, raw string) (*service.Session, error) {
	return nil, fmt.Errorf("%w: invalid refresh token", service.ErrUnauthorized)
}

func (a *authStub) Logout(ctx context.Context, userID uint64, raw string) error { return nil }

func (a *authStub) Me(ctx context.Context, userID uint64) (*model.User, error) {
	return &model.User{ID: userID}, nil
}

type userManagerStub struct {
	registered service.NewUserInput
}

func (u *userManagerStub) Register(ctx context.Context, in service.NewUserInput) (*model.User, error) {
	u.registered = in
	return &model.User{ID: 12, Username: in.Username, Role: model.RoleClient}, nil
}

func (u *userManagerStub) Create(ctx context.Context, in service.NewUserInput, by service.Requester) (*model.User, error) {
	return nil, fmt.Errorf("%w: only an admin may create staff accounts", service.ErrForbidden)
}

func (u *userManagerStub) Get(ctx context.Context, id uint64, by service.Requester) (*model.User, error) {
	return &model.User{ID: id}, nil
}

func (u *userManagerStub) List(ctx context.Context) ([]model.User, error) { return []model.User{}, nil }

func (u *userManagerStub) Update(ctx context.Context, id uint64, in service.UpdateUserInput, by service.Requester) error {
	return nil
}

func (u *userManagerStub) Deactivate(ctx context.Context, id uint64, by service.Requester) (bool, error) {
	return true, nil
}

func TestRegisterIssuesSession(t *testing.T) {
	auth, users := &authStub{}, &userManagerStub{}
	h := NewAuthHandler(auth, users)

	c, rec := newCtx(http.MethodPost, "/api/v1/auth/register", `{"name":"Cleo","username":"cleo@example.com","password":"secret123"}`, 0, "")
	_ = h.Register(c)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if auth.issued == nil || auth.issued.ID != 12 {
		t.Fatal("session not issued for the new user")
	}

	c, rec = newCtx(http.MethodPost, "/api/v1/auth/register", `{"name":"Cleo","username":"not-an-email","password":"short"}`, 0, "")
	_ = h.Register(c)
	env := expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	if env.Error.Details["username"] == "" || env.Error.Details["password"] == "" {
		t.Fatalf("unexpected details %v", env.Error.Details)
	}
}

func TestLoginAndRefreshFailures(t *testing.T) {
	h := NewAuthHandler(&authStub{}, &userManagerStub{})

	c, rec := newCtx(http.MethodPost, "/api/v1/auth/login", `{"username":"a@b.c","password":"x"}`, 0, "")
	_ = h.Login(c)
	expectFail(t, rec, http.StatusUnauthorized, response.KindUnauthorized)

	c, rec = newCtx(http.MethodPost, "/api/v1/auth/refresh", `{"refreshToken":"nope"}`, 0, "")
	_ = h.Refresh(c)
	expectFail(t, rec, http.StatusUnauthorized, response.KindUnauthorized)

	c, rec = newCtx(http.MethodPost, "/api/v1/auth/logout", `{}`, 4, model.RoleClient)
	_ = h.Logout(c)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
}

func TestCreateUserForbidden(t *testing.T) {
	h := NewUserHandler(&userManagerStub{})
	c, rec := newCtx(http.MethodPost, "/api/v1/users", `{"name":"S","username":"s@example.com","password":"secret123","role":"staff"}`, 2, model.RoleStaff)
	_ = h.Create(c)
	expectFail(t, rec, http.StatusForbidden, response.KindForbidden)

	c, rec = newCtx(http.MethodPost, "/api/v1/users", `{"name":"S","username":"s@example.com","password":"secret123","role":"owner"}`, 1, model.RoleAdmin)
	_ = h.Create(c)
	env := expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
	if env.Error.Details["role"] == "" {
		t.Fatalf("expected role detail, got %v", env.Error.Details)
	}
}

// ----- upload -----

func TestUploadRequiresFile(t *testing.T) {
	h := NewUploadHandler(nil, storage.DefaultPhotoProcessor())
	c, rec := newCtx(http.MethodPost, "/api/v1/uploads/photos", "", 1, model.RoleAdmin)
	_ = h.Photo(c)
	expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
}

type photoStoreStub struct {
	data        []byte
	contentType string
}

func (p *photoStoreStub) PutPhoto(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	p.data, p.contentType = data, contentType
	return "https://cdn.example.com/photos/x" + ext, nil
}

func multipartFile(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(content)
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadPhoto(t *testing.T) {
	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	store := &photoStoreStub{}
	h := NewUploadHandler(store, storage.DefaultPhotoProcessor())

	body, ctype := multipartFile(t, "cake.png", img.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/photos", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if err := h.Photo(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"url":"https://cdn.example.com/photos/x.jpg"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if store.contentType != "image/jpeg" || len(store.data) == 0 {
		t.Fatalf("stored %q with %d bytes", store.contentType, len(store.data))
	}

	body, ctype = multipartFile(t, "notes.txt", []byte("not an image"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/uploads/photos", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec = httptest.NewRecorder()
	_ = h.Photo(echo.New().NewContext(req, rec))
	expectFail(t, rec, http.StatusBadRequest, response.KindValidation)
}

func TestHealth(t *testing.T) {
	c, rec := newCtx(http.MethodGet, "/healthz", "", 0, "")
	_ = Health(c)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}
