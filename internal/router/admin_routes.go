package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// registerAdminRoutes mounts the operations surface: the live shift
// board, overrides, payroll management, the risk dashboard, PSW
// approval and settings. The list views feed polling dashboards and
// get the short-TTL response cache; their content is the same for
// every admin.
func registerAdminRoutes(v1 *echo.Group, h Handlers, auth, cache echo.MiddlewareFunc) {
	g := v1.Group("/admin", auth, middleware.RequireRole(model.RoleAdmin))

	g.GET("/shifts", h.Admin.ListAll, cache)
	g.GET("/shifts/:id", h.Admin.Get)
	g.POST("/shifts/:id/checkin-override", h.Admin.CheckInOverride)
	g.POST("/shifts/:id/signout-override", h.Admin.SignOutOverride)
	g.POST("/shifts/:id/stop", h.Admin.Stop)

	g.GET("/psws", h.Admin.ListPSWs)
	g.PATCH("/psws/:id/active", h.Admin.SetPSWActive)

	g.GET("/payroll", h.Payroll.ListAll, cache)
	g.POST("/payroll/shifts/:id", h.Payroll.Generate)
	g.POST("/payroll/:id/clear", h.Payroll.Clear)

	g.GET("/alerts", h.Alerts.List, cache)
	g.POST("/alerts/scan", h.Alerts.Scan)
	g.POST("/alerts/:id/resolve", h.Alerts.Resolve)
	g.DELETE("/alerts/:id", h.Alerts.Delete)

	g.GET("/settings", h.Settings.Get)
	g.PUT("/settings", h.Settings.Update)
}
