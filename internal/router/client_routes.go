package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// registerClientRoutes mounts the client surface: placing bookings
// (which opens shifts into the pool) and reading booking history.
func registerClientRoutes(v1 *echo.Group, h Handlers, auth echo.MiddlewareFunc) {
	g := v1.Group("/bookings", auth, middleware.RequireRole(model.RoleClient, model.RoleAdmin))

	g.POST("", h.Booking.Create)
	g.GET("", h.Booking.Mine)
}
