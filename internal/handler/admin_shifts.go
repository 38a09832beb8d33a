package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
	"github.com/tiffarshi-web/pswdirect/internal/service"
)

// AdminShiftHandler serves the operations side: the live board of all
// shifts, the audited overrides past the GPS and care-sheet gates,
// stopping shifts, and PSW account approval.
type AdminShiftHandler struct {
	Lifecycle *service.Lifecycle
	Shifts    service.ShiftStore
	Users     *repository.UserRepo
}

func NewAdminShiftHandler(lc *service.Lifecycle, shifts service.ShiftStore, users *repository.UserRepo) *AdminShiftHandler {
	return &AdminShiftHandler{Lifecycle: lc, Shifts: shifts, Users: users}
}

type overrideReq struct {
	Reason string `json:"reason"`
}

// ListAll handles GET /v1/admin/shifts, optionally filtered by
// ?status=.
func (h *AdminShiftHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		shifts []*model.Shift
		err    error
	)
	if status := c.QueryParam("status"); status != "" {
		shifts, err = h.Shifts.ListByStatus(ctx, status)
	} else {
		shifts, err = h.Shifts.ListAll(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load shifts failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"shifts": toShiftViews(shifts)})
}

// Get handles GET /v1/admin/shifts/:id.
func (h *AdminShiftHandler) Get(c echo.Context) error {
	s, err := h.Shifts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load shift failed"})
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}

// CheckInOverride handles POST /v1/admin/shifts/:id/checkin-override.
// The reason is mandatory and lands in the shift's override log.
func (h *AdminShiftHandler) CheckInOverride(c echo.Context) error {
	var body overrideReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := h.Lifecycle.CheckInOverride(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c), body.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}

// SignOutOverride handles POST /v1/admin/shifts/:id/signout-override.
func (h *AdminShiftHandler) SignOutOverride(c echo.Context) error {
	var body overrideReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := h.Lifecycle.SignOutOverride(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c), body.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}

// Stop handles POST /v1/admin/shifts/:id/stop.
func (h *AdminShiftHandler) Stop(c echo.Context) error {
	var body overrideReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := h.Lifecycle.Stop(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c), body.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}

// ListPSWs handles GET /v1/admin/psws: every worker account with its
// approval state, for the onboarding queue.
func (h *AdminShiftHandler) ListPSWs(c echo.Context) error {
	users, err := h.Users.ListByRole(c.Request().Context(), model.RolePSW)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load users failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, IsActive: u.IsActive})
	}
	return c.JSON(http.StatusOK, echo.Map{"psws": out})
}

// SetPSWActive handles PATCH /v1/admin/psws/:id/active with
// {"active": bool}; approval and suspension share the endpoint.
func (h *AdminShiftHandler) SetPSWActive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Users.SetActive(c.Request().Context(), id, body.Active); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": body.Active})
}
