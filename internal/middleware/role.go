package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/response"
)

// RequireRole lets the request through only when JWTAuth stored one of
// roles.  It must run after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, role, ok := CurrentUser(c)
			if !ok {
				return response.Fail(c, http.StatusUnauthorized, response.KindUnauthorized, "authentication required", nil)
			}
			if !allowed[role] {
				return response.Fail(c, http.StatusForbidden, response.KindForbidden, "role "+string(role)+" may not access this resource", nil)
			}
			return next(c)
		}
	}
}
