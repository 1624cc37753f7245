package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/salon-reservation/internal/logger"
)

// RequestLogger tags each request with an id (reusing X-Request-ID when the
// client sends one), stores a request-scoped logger in the context and
// logs one line per response.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			l := log.With().Str("request_id", rid).Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), &l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			ev := l.Info()
			switch {
			case status >= 500:
				ev = l.Error()
			case status >= 400:
				ev = l.Warn()
			}
			if id, _, ok := CurrentUser(c); ok {
				ev = ev.Uint64("user_id", id)
			}
			ev.Str("method", req.Method).Str("path", req.URL.Path).Int("status", status).
				Dur("latency", time.Since(start)).Str("ip", c.RealIP()).Msg("request")
			return nil
		}
	}
}
