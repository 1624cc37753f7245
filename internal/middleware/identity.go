package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identityKey names the caller in rate limit and cache keys; anonymous
// requests share "anon".
func identityKey(c echo.Context) string {
	if id, _, ok := CurrentUser(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
