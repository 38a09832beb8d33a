package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/service"
)

// PayrollHandler serves the pay-record endpoints: admins generate and
// clear entries, workers read their own.
type PayrollHandler struct {
	Payroll *service.Payroll
}

func NewPayrollHandler(p *service.Payroll) *PayrollHandler {
	return &PayrollHandler{Payroll: p}
}

// payrollView exposes money in cents; the client formats currency.
type payrollView struct {
	ID               uint64     `json:"id"`
	ShiftID          string     `json:"shift_id"`
	PSWID            uint64     `json:"psw_id"`
	PSWName          string     `json:"psw_name"`
	TaskName         string     `json:"task_name"`
	ScheduledDate    string     `json:"scheduled_date"`
	HoursWorked      float64    `json:"hours_worked"`
	HourlyRateCents  int64      `json:"hourly_rate_cents"`
	BasePayCents     int64      `json:"base_pay_cents"`
	OvertimePayCents int64      `json:"overtime_pay_cents"`
	SurchargeCents   int64      `json:"surcharge_cents"`
	TotalOwedCents   int64      `json:"total_owed_cents"`
	Status           string     `json:"status"`
	ClearedAt        *time.Time `json:"cleared_at,omitempty"`
}

func toPayrollView(e *model.PayrollEntry) payrollView {
	return payrollView{
		ID:               e.ID,
		ShiftID:          e.ShiftID,
		PSWID:            e.PSWID,
		PSWName:          e.PSWName,
		TaskName:         e.TaskName,
		ScheduledDate:    e.ScheduledDate,
		HoursWorked:      e.HoursWorked,
		HourlyRateCents:  e.HourlyRateCents,
		BasePayCents:     e.BasePayCents,
		OvertimePayCents: e.OvertimePayCents,
		SurchargeCents:   e.SurchargeCents,
		TotalOwedCents:   e.TotalOwedCents,
		Status:           e.Status,
		ClearedAt:        e.ClearedAt,
	}
}

func toPayrollViews(entries []*model.PayrollEntry) []payrollView {
	out := make([]payrollView, 0, len(entries))
	for _, e := range entries {
		out = append(out, toPayrollView(e))
	}
	return out
}

// Generate handles POST /v1/admin/payroll/shifts/:id: derive the pay
// record for a completed shift. Safe to repeat; the stored entry comes
// back on duplicates.
func (h *PayrollHandler) Generate(c echo.Context) error {
	e, err := h.Payroll.GenerateForShift(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, toPayrollView(e))
}

// Clear handles POST /v1/admin/payroll/:id/clear.
func (h *PayrollHandler) Clear(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	if err := h.Payroll.Clear(c.Request().Context(), id, middleware.CurrentActor(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.PayrollCleared})
}

// ListAll handles GET /v1/admin/payroll for the report view.
func (h *PayrollHandler) ListAll(c echo.Context) error {
	entries, err := h.Payroll.ListAll(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": toPayrollViews(entries)})
}

// Mine handles GET /v1/payroll/mine: a worker's own pay records.
func (h *PayrollHandler) Mine(c echo.Context) error {
	entries, err := h.Payroll.ListForWorker(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": toPayrollViews(entries)})
}
