// Package handler holds the HTTP handlers.  Handlers bind and validate the
// request, call one service or store method and write the envelope from
// the response package; they carry no business rules of their own.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/salon-reservation/internal/middleware"
	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
	"github.com/iliyamo/salon-reservation/internal/response"
	"github.com/iliyamo/salon-reservation/internal/service"
	"github.com/iliyamo/salon-reservation/internal/validator"
)

// dbTimeout bounds the store calls a single handler makes.
const dbTimeout = 5 * time.Second

func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// requester returns the authenticated caller set by JWTAuth.
func requester(c echo.Context) (service.Requester, bool) {
	id, role, ok := middleware.CurrentUser(c)
	return service.Requester{UserID: id, Role: role}, ok
}

func unauthorized(c echo.Context) error {
	return response.Fail(c, http.StatusUnauthorized, response.KindUnauthorized, "authentication required", nil)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func invalidID(c echo.Context) error {
	return response.Fail(c, http.StatusBadRequest, response.KindBadRequest, "invalid id", nil)
}

// bind decodes the body into dst and runs struct validation.  On failure
// the error response has already been written and ok is false.
func bind(c echo.Context, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, response.Fail(c, http.StatusBadRequest, response.KindBadRequest, "invalid request body", nil)
	}
	if fields := validator.Validate(dst); fields != nil {
		return false, response.Invalid(c, fields)
	}
	return true, nil
}

// checkPrice records a field error when a price is present and negative.
func checkPrice(fields map[string]string, name string, d *decimal.Decimal) map[string]string {
	if d == nil || !d.IsNegative() {
		return fields
	}
	if fields == nil {
		fields = map[string]string{}
	}
	fields[name] = "must not be negative"
	return fields
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (*model.Date, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// storeError maps the repository sentinels catalog and user handlers can
// see directly.  Anything else goes through response.FromError.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrVenueNotFound),
		errors.Is(err, repository.ErrServiceNotFound),
		errors.Is(err, repository.ErrTimeSlotNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return response.Fail(c, http.StatusNotFound, response.KindNotFound, err.Error(), nil)
	case errors.Is(err, repository.ErrNoChange):
		return response.Fail(c, http.StatusBadRequest, response.KindValidation, "no updatable fields supplied", nil)
	case errors.Is(err, repository.ErrDuplicate):
		return response.Fail(c, http.StatusConflict, response.KindConflict, "resource already exists", nil)
	case errors.Is(err, repository.ErrMissingReference):
		return response.Fail(c, http.StatusConflict, response.KindConflict, "resource is still referenced", nil)
	}
	return response.FromError(c, err)
}

// deleted answers a soft delete: 200 when a row was deactivated, 404 when
// nothing active matched.
func deleted(c echo.Context, what string, ok bool) error {
	if !ok {
		return response.Fail(c, http.StatusNotFound, response.KindNotFound, what+" not found", nil)
	}
	return response.OK(c, http.StatusOK, map[string]bool{"deleted": true})
}
