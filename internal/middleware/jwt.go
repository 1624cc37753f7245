package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/response"
	"github.com/iliyamo/salon-reservation/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates the Bearer access token and stores the caller's id and
// role in the echo context; read them back with CurrentUser.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return response.Fail(c, http.StatusUnauthorized, response.KindUnauthorized, "missing bearer token", nil)
			}
			id, role, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				return response.Fail(c, http.StatusUnauthorized, response.KindUnauthorized, "invalid or expired token", nil)
			}
			c.Set(ctxUserID, id)
			c.Set(ctxRole, role)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated caller, if any.
func CurrentUser(c echo.Context) (uint64, model.Role, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	if !ok || id == 0 {
		return 0, "", false
	}
	role, _ := c.Get(ctxRole).(model.Role)
	return id, role, true
}
