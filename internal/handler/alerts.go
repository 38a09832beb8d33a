package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/service"
)

// AlertHandler serves the risk dashboard: running scans and resolving
// or deleting the resulting alerts. Admin-only throughout.
type AlertHandler struct {
	Scanner *service.RiskScanner
}

func NewAlertHandler(s *service.RiskScanner) *AlertHandler {
	return &AlertHandler{Scanner: s}
}

type alertView struct {
	ID                string     `json:"id"`
	Category          string     `json:"category"`
	Severity          string     `json:"severity"`
	Title             string     `json:"title"`
	DetectedIssue     string     `json:"detected_issue"`
	WhyItMatters      string     `json:"why_it_matters"`
	LikelyRootCause   string     `json:"likely_root_cause"`
	RecommendedAction string     `json:"recommended_action"`
	SourceRef         string     `json:"source_ref"`
	Resolved          bool       `json:"resolved"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy        string     `json:"resolved_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toAlertViews(alerts []*model.RiskAlert) []alertView {
	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertView{
			ID:                a.ID,
			Category:          a.Category,
			Severity:          a.Severity,
			Title:             a.Title,
			DetectedIssue:     a.DetectedIssue,
			WhyItMatters:      a.WhyItMatters,
			LikelyRootCause:   a.LikelyRootCause,
			RecommendedAction: a.RecommendedAction,
			SourceRef:         a.SourceRef,
			Resolved:          a.Resolved,
			ResolvedAt:        a.ResolvedAt,
			ResolvedBy:        a.ResolvedBy,
			CreatedAt:         a.CreatedAt,
		})
	}
	return out
}

// Scan handles POST /v1/admin/alerts/scan.
func (h *AlertHandler) Scan(c echo.Context) error {
	report, err := h.Scanner.Scan(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"alerts":  toAlertViews(report.Alerts),
		"scanned": report.Scanned,
		"skipped": report.Skipped,
	})
}

// List handles GET /v1/admin/alerts, unresolved first.
func (h *AlertHandler) List(c echo.Context) error {
	alerts, err := h.Scanner.ListAlerts(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"alerts": toAlertViews(alerts)})
}

// Resolve handles POST /v1/admin/alerts/:id/resolve.
func (h *AlertHandler) Resolve(c echo.Context) error {
	if err := h.Scanner.ResolveAlert(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c)); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/admin/alerts/:id.
func (h *AlertHandler) Delete(c echo.Context) error {
	if err := h.Scanner.DeleteAlert(c.Request().Context(), c.Param("id"), middleware.CurrentActor(c)); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
