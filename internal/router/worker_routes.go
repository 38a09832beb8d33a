package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// registerWorkerRoutes mounts the PSW surface: pool browsing, the
// lifecycle actions on a shift, the worker's own records and profile.
// The pool view is filtered per worker, so it is never response-cached:
// a shared cache entry would leak one worker's eligibility to another.
func registerWorkerRoutes(v1 *echo.Group, h Handlers, auth echo.MiddlewareFunc) {
	g := v1.Group("/shifts", auth, middleware.RequireRole(model.RolePSW))

	g.GET("/available", h.Worker.Browse)
	g.GET("/mine", h.Worker.Mine)
	g.GET("/:id", h.Worker.Get)
	g.POST("/:id/claim", h.Worker.Claim)
	g.POST("/:id/checkin", h.Worker.CheckIn)
	g.POST("/:id/signout", h.Worker.SignOut)

	w := v1.Group("/workers", auth, middleware.RequireRole(model.RolePSW))
	w.GET("/me", h.Profile.Me)
	w.PUT("/me", h.Profile.Upsert)

	p := v1.Group("/payroll", auth, middleware.RequireRole(model.RolePSW))
	p.GET("/mine", h.Payroll.Mine)
}
