package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/eligibility"
	"github.com/tiffarshi-web/pswdirect/internal/geo"
	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
	"github.com/tiffarshi-web/pswdirect/internal/service"
)

// WorkerShiftHandler serves the PSW-facing shift endpoints: browsing
// the available pool through the eligibility filter, claiming,
// GPS-gated check-in and care-sheet sign-out. JWT and role middleware
// run before every method here.
type WorkerShiftHandler struct {
	Lifecycle *service.Lifecycle
	Shifts    service.ShiftStore
	Workers   *repository.WorkerRepo
	Filter    *eligibility.Filter
}

func NewWorkerShiftHandler(lc *service.Lifecycle, shifts service.ShiftStore, workers *repository.WorkerRepo, filter *eligibility.Filter) *WorkerShiftHandler {
	return &WorkerShiftHandler{Lifecycle: lc, Shifts: shifts, Workers: workers, Filter: filter}
}

// Browse handles GET /v1/shifts/available. The pool is filtered per
// worker (distance, gender, language window) and projected down to the
// privacy-preserving view. A worker without a profile on file sees an
// empty pool plus a hint to complete onboarding.
func (h *WorkerShiftHandler) Browse(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	ctx := c.Request().Context()

	profile, err := h.Workers.GetByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{
				"shifts":  []poolShiftView{},
				"message": "complete your worker profile to see available shifts",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}

	pool, err := h.Shifts.ListByStatus(ctx, model.ShiftAvailable)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load shifts failed"})
	}
	visible := h.Filter.FilterShifts(ctx, pool, profile, time.Now().UTC())
	return c.JSON(http.StatusOK, echo.Map{"shifts": toPoolViews(visible)})
}

// Claim handles POST /v1/shifts/:id/claim. The conduct agreement
// checkbox travels in the body; exclusivity against concurrent claims
// comes from the store's conditional update, surfaced as 409.
func (h *WorkerShiftHandler) Claim(c echo.Context) error {
	var body struct {
		AgreementAccepted bool `json:"agreement_accepted"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := h.Lifecycle.Claim(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c), body.AgreementAccepted)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}

// CheckIn handles POST /v1/shifts/:id/checkin with the worker's GPS
// fix. The mobile client owns GPS acquisition and its timeout; a
// request without coordinates is rejected here.
func (h *WorkerShiftHandler) CheckIn(c echo.Context) error {
	var body struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var fix *geo.Coordinates
	if body.Lat != nil && body.Lng != nil {
		fix = &geo.Coordinates{Lat: *body.Lat, Lng: *body.Lng}
	}
	s, err := h.Lifecycle.CheckIn(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c), fix)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}

// SignOut handles POST /v1/shifts/:id/signout with the care sheet.
func (h *WorkerShiftHandler) SignOut(c echo.Context) error {
	var body struct {
		CareSheet *model.CareSheet `json:"care_sheet"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := h.Lifecycle.SignOut(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c), body.CareSheet)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}

// Mine handles GET /v1/shifts/mine: the worker's claimed, active and
// finished shifts with full detail.
func (h *WorkerShiftHandler) Mine(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	shifts, err := h.Shifts.ListByPSW(c.Request().Context(), actor.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load shifts failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"shifts": toShiftViews(shifts)})
}

// Get handles GET /v1/shifts/:id for the assigned worker. Workers may
// only read their own shifts.
func (h *WorkerShiftHandler) Get(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	s, err := h.Shifts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load shift failed"})
	}
	if s.PSWID != actor.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toShiftView(s))
}
