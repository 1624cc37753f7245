// Package response writes the JSON envelope every endpoint returns:
// {ok:true,data} on success and {ok:false,error:{kind,message,details}}
// on failure.
package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/logger"
	"github.com/iliyamo/salon-reservation/internal/service"
)

// Error kinds.
const (
	KindValidation   = "validation"
	KindBadRequest   = "bad_request"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindNotFound     = "not_found"
	KindConflict     = "conflict"
	KindRateLimited  = "rate_limited"
	KindInternal     = "internal"
)

type Envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{OK: true, Data: data})
}

func Fail(c echo.Context, status int, kind, message string, details map[string]string) error {
	return c.JSON(status, Envelope{Error: &ErrorBody{Kind: kind, Message: message, Details: details}})
}

// Invalid answers 400 with per-field details.
func Invalid(c echo.Context, details map[string]string) error {
	return Fail(c, http.StatusBadRequest, KindValidation, "request validation failed", details)
}

// FromError maps a service error to a response.  Unknown errors are logged
// with the request logger and answered with a generic 500.
func FromError(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return Invalid(c, ve.Fields)
	case errors.Is(err, service.ErrValidation):
		return Fail(c, http.StatusBadRequest, KindValidation, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthorized):
		return Fail(c, http.StatusUnauthorized, KindUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		return Fail(c, http.StatusForbidden, KindForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		return Fail(c, http.StatusNotFound, KindNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrConflict):
		return Fail(c, http.StatusConflict, KindConflict, err.Error(), nil)
	}
	logger.FromContext(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
	return Fail(c, http.StatusInternalServerError, KindInternal, "internal server error", nil)
}
