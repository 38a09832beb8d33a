package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
	"github.com/tiffarshi-web/pswdirect/internal/service"
)

// BookingHandler serves the client-facing booking endpoints. Placing a
// booking opens exactly one shift in the available pool; the booking
// itself stays as the client's history record.
type BookingHandler struct {
	Bookings  *repository.BookingRepo
	Lifecycle *service.Lifecycle
}

func NewBookingHandler(b *repository.BookingRepo, lc *service.Lifecycle) *BookingHandler {
	return &BookingHandler{Bookings: b, Lifecycle: lc}
}

type createBookingReq struct {
	ClientPhone        string    `json:"client_phone"`
	PatientAddress     string    `json:"patient_address"`
	PostalCode         string    `json:"postal_code"`
	ScheduledDate      string    `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledStart     time.Time `json:"scheduled_start"`
	ScheduledEnd       time.Time `json:"scheduled_end"`
	Services           []string  `json:"services"`
	PreferredLanguages []string  `json:"preferred_languages"`
	PreferredGender    string    `json:"preferred_gender"`
}

// Create handles POST /v1/bookings. Validation is strict: the shift
// opened from a malformed booking would poison the pool for every
// worker browsing it.
func (h *BookingHandler) Create(c echo.Context) error {
	actor := middleware.CurrentActor(c)

	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.PatientAddress) == "" || strings.TrimSpace(req.PostalCode) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patient_address and postal_code are required"})
	}
	if req.ScheduledDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_date is required"})
	}
	if _, err := time.Parse("2006-01-02", req.ScheduledDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_date must be YYYY-MM-DD"})
	}
	if req.ScheduledStart.IsZero() || req.ScheduledEnd.IsZero() || !req.ScheduledEnd.After(req.ScheduledStart) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_end must be after scheduled_start"})
	}
	if len(req.Services) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one service is required"})
	}
	gender := strings.ToUpper(strings.TrimSpace(req.PreferredGender))
	switch gender {
	case "", model.GenderMale, model.GenderFemale, model.GenderNoPreference:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "preferred_gender must be MALE, FEMALE or NO_PREFERENCE"})
	}

	b := &model.Booking{
		ID:                 uuid.NewString(),
		ClientUserID:       actor.ID,
		ClientName:         actor.Name,
		ClientPhone:        strings.TrimSpace(req.ClientPhone),
		PatientAddress:     strings.TrimSpace(req.PatientAddress),
		PostalCode:         strings.ToUpper(strings.TrimSpace(req.PostalCode)),
		ScheduledDate:      req.ScheduledDate,
		ScheduledStart:     req.ScheduledStart.UTC(),
		ScheduledEnd:       req.ScheduledEnd.UTC(),
		Services:           req.Services,
		PreferredLanguages: req.PreferredLanguages,
		PreferredGender:    gender,
	}

	ctx := c.Request().Context()
	if err := h.Bookings.Insert(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save booking failed"})
	}
	s, err := h.Lifecycle.PostShift(ctx, b)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "post shift failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id": b.ID,
		"shift":      toShiftView(s),
	})
}

type bookingView struct {
	ID                 string    `json:"id"`
	PatientAddress     string    `json:"patient_address"`
	PostalCode         string    `json:"postal_code"`
	ScheduledDate      string    `json:"scheduled_date"`
	ScheduledStart     time.Time `json:"scheduled_start"`
	ScheduledEnd       time.Time `json:"scheduled_end"`
	Services           []string  `json:"services"`
	PreferredLanguages []string  `json:"preferred_languages,omitempty"`
	PreferredGender    string    `json:"preferred_gender,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// Mine handles GET /v1/bookings: the client's own bookings, newest
// first.
func (h *BookingHandler) Mine(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	bookings, err := h.Bookings.ListByClient(c.Request().Context(), actor.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bookings failed"})
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingView{
			ID:                 b.ID,
			PatientAddress:     b.PatientAddress,
			PostalCode:         b.PostalCode,
			ScheduledDate:      b.ScheduledDate,
			ScheduledStart:     b.ScheduledStart,
			ScheduledEnd:       b.ScheduledEnd,
			Services:           b.Services,
			PreferredLanguages: b.PreferredLanguages,
			PreferredGender:    b.PreferredGender,
			CreatedAt:          b.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}
