// Package router wires every HTTP endpoint to its handler and the
// middleware chain protecting it.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/tiffarshi-web/pswdirect/internal/config"
	"github.com/tiffarshi-web/pswdirect/internal/handler"
	"github.com/tiffarshi-web/pswdirect/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Worker   *handler.WorkerShiftHandler
	Profile  *handler.WorkerProfileHandler
	Admin    *handler.AdminShiftHandler
	Booking  *handler.BookingHandler
	Payroll  *handler.PayrollHandler
	Alerts   *handler.AlertHandler
	Settings *handler.SettingsHandler
}

// Register mounts all routes on the Echo instance. The rate limiter
// spans the whole /v1 surface; response caching covers only the
// read-heavy polled views. rdb may be nil, which disables both.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Public auth surface.
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/refresh", h.Auth.Refresh)
	v1.POST("/auth/logout", h.Auth.Logout)

	auth := middleware.JWTAuth(cfg.JWTSecret)
	v1.GET("/auth/me", h.Auth.Me, auth)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	registerWorkerRoutes(v1, h, auth)
	registerClientRoutes(v1, h, auth)
	registerAdminRoutes(v1, h, auth, cache)
}
