package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
)

// SettingsHandler exposes the operational knobs: the rate table, surge
// zones and matching parameters. Changes take effect on the next
// operation that reads them; already-generated payroll entries keep
// the figures they were computed with.
type SettingsHandler struct {
	Settings *repository.SettingsRepo
}

func NewSettingsHandler(s *repository.SettingsRepo) *SettingsHandler {
	return &SettingsHandler{Settings: s}
}

type surgeZoneDTO struct {
	Prefix      string `json:"prefix"`
	FlatCents   int64  `json:"flat_cents"`
	HourlyCents int64  `json:"hourly_cents"`
}

type settingsDTO struct {
	StandardHomeCareCents      int64          `json:"standard_home_care_cents"`
	HospitalOrDoctorVisitCents int64          `json:"hospital_or_doctor_visit_cents"`
	SurgeZones                 []surgeZoneDTO `json:"surge_zones"`
	ServiceRadiusKm            float64        `json:"service_radius_km"`
	ReopenWindowHours          float64        `json:"reopen_window_hours"`
	CheckInToleranceKm         float64        `json:"checkin_tolerance_km"`
}

func toSettingsDTO(s model.OperationalSettings) settingsDTO {
	zones := make([]surgeZoneDTO, 0, len(s.SurgeZones))
	for _, z := range s.SurgeZones {
		zones = append(zones, surgeZoneDTO{Prefix: z.Prefix, FlatCents: z.FlatCents, HourlyCents: z.HourlyCents})
	}
	return settingsDTO{
		StandardHomeCareCents:      s.Rates.StandardHomeCareCents,
		HospitalOrDoctorVisitCents: s.Rates.HospitalOrDoctorVisitCents,
		SurgeZones:                 zones,
		ServiceRadiusKm:            s.ServiceRadiusKm,
		ReopenWindowHours:          s.ReopenWindowHours,
		CheckInToleranceKm:         s.CheckInToleranceKm,
	}
}

// Get handles GET /v1/admin/settings.
func (h *SettingsHandler) Get(c echo.Context) error {
	s, err := h.Settings.Get(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load settings failed"})
	}
	return c.JSON(http.StatusOK, toSettingsDTO(s))
}

// Update handles PUT /v1/admin/settings with the full settings
// document; partial updates are not supported, the admin UI always
// submits the whole form.
func (h *SettingsHandler) Update(c echo.Context) error {
	var req settingsDTO
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.StandardHomeCareCents <= 0 || req.HospitalOrDoctorVisitCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rates must be positive"})
	}
	if req.ServiceRadiusKm <= 0 || req.ReopenWindowHours <= 0 || req.CheckInToleranceKm <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "matching parameters must be positive"})
	}
	for _, z := range req.SurgeZones {
		if z.Prefix == "" || z.FlatCents < 0 || z.HourlyCents < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid surge zone"})
		}
	}

	zones := make([]model.SurgeZone, 0, len(req.SurgeZones))
	for _, z := range req.SurgeZones {
		zones = append(zones, model.SurgeZone{Prefix: z.Prefix, FlatCents: z.FlatCents, HourlyCents: z.HourlyCents})
	}
	s := model.OperationalSettings{
		Rates: model.RateTable{
			StandardHomeCareCents:      req.StandardHomeCareCents,
			HospitalOrDoctorVisitCents: req.HospitalOrDoctorVisitCents,
		},
		SurgeZones:         zones,
		ServiceRadiusKm:    req.ServiceRadiusKm,
		ReopenWindowHours:  req.ReopenWindowHours,
		CheckInToleranceKm: req.CheckInToleranceKm,
	}
	if err := h.Settings.Put(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save settings failed"})
	}
	return c.JSON(http.StatusOK, toSettingsDTO(s))
}
