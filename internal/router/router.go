// Package router wires handlers to paths and attaches the auth, role,
// rate limit and cache middleware each group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/handler"
	"github.com/iliyamo/salon-reservation/internal/middleware"
	"github.com/iliyamo/salon-reservation/internal/model"
)

// Handlers collects everything RegisterRoutes mounts.  Upload is nil when
// object storage is not configured.
type Handlers struct {
	Auth     *handler.AuthHandler
	Bookings *handler.BookingHandler
	Catalog  *handler.CatalogHandler
	Users    *handler.UserHandler
	Reports  *handler.ReportHandler
	Upload   *handler.UploadHandler
}

// Middleware holds the shared middleware built from config.
type Middleware struct {
	RateLimit   echo.MiddlewareFunc
	Cache       echo.MiddlewareFunc
	Invalidator *middleware.CacheInvalidator
}

// RegisterRoutes mounts the health probes at the root and the API under
// /api/v1.
func RegisterRoutes(e *echo.Echo, jwtSecret string, h Handlers, mw Middleware) {
	e.GET("/healthz", handler.Health)
	e.GET("/estado", handler.Health)

	api := e.Group("/api/v1")
	var limit []echo.MiddlewareFunc
	if mw.RateLimit != nil {
		limit = append(limit, mw.RateLimit)
	}

	// Session bootstrap needs no token and is limited per client address.
	auth := api.Group("/auth", limit...)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	jwt := middleware.JWTAuth(jwtSecret)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleStaff, model.RoleClient)

	// The limiter runs after JWTAuth here so user-based keys see the caller.
	authed := api.Group("", append([]echo.MiddlewareFunc{jwt, anyRole}, limit...)...)
	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)

	b := authed.Group("/bookings")
	b.POST("", h.Bookings.Create)
	b.GET("", h.Bookings.List, staff)
	b.GET("/mine", h.Bookings.Mine)
	b.GET("/availability", h.Bookings.Availability)
	b.GET("/:id", h.Bookings.Get)
	b.PUT("/:id", h.Bookings.Update, staff)
	b.DELETE("/:id", h.Bookings.Delete, staff)

	registerCatalog(authed, h.Catalog, staff, mw)

	u := authed.Group("/users")
	u.GET("", h.Users.List, staff)
	u.POST("", h.Users.Create, staff)
	u.GET("/:id", h.Users.Get)
	u.PUT("/:id", h.Users.Update)
	u.DELETE("/:id", h.Users.Delete, adminOnly)

	authed.GET("/reports/summary", h.Reports.Summary, staff)

	if h.Upload != nil {
		authed.POST("/uploads/photos", h.Upload.Photo)
	}
}

// registerCatalog mounts venue, service and time slot CRUD.  Reads go
// through the response cache; writes need staff and clear it.
func registerCatalog(g *echo.Group, c *handler.CatalogHandler, staff echo.MiddlewareFunc, mw Middleware) {
	var reads, writes []echo.MiddlewareFunc
	if mw.Cache != nil {
		reads = append(reads, mw.Cache)
	}
	writes = append(writes, staff)
	if mw.Invalidator != nil {
		writes = append(writes, mw.Invalidator.InvalidateOnWrite())
	}

	v := g.Group("/venues")
	v.GET("", c.ListVenues, reads...)
	v.GET("/:id", c.GetVenue, reads...)
	v.POST("", c.CreateVenue, writes...)
	v.PUT("/:id", c.UpdateVenue, writes...)
	v.DELETE("/:id", c.DeleteVenue, writes...)

	s := g.Group("/services")
	s.GET("", c.ListServices, reads...)
	s.GET("/:id", c.GetService, reads...)
	s.POST("", c.CreateService, writes...)
	s.PUT("/:id", c.UpdateService, writes...)
	s.DELETE("/:id", c.DeleteService, writes...)

	t := g.Group("/time-slots")
	t.GET("", c.ListTimeSlots, reads...)
	t.GET("/:id", c.GetTimeSlot, reads...)
	t.POST("", c.CreateTimeSlot, writes...)
	t.PUT("/:id", c.UpdateTimeSlot, writes...)
	t.DELETE("/:id", c.DeleteTimeSlot, writes...)
}
