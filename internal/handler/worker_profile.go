package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/middleware"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
)

// WorkerProfileHandler lets a PSW maintain the profile the matching
// and payroll sides read: languages, declared gender, home postal code
// and whether banking details are on file.
type WorkerProfileHandler struct {
	Workers *repository.WorkerRepo
}

func NewWorkerProfileHandler(w *repository.WorkerRepo) *WorkerProfileHandler {
	return &WorkerProfileHandler{Workers: w}
}

type workerProfileReq struct {
	Phone          string   `json:"phone"`
	PhotoURL       string   `json:"photo_url"`
	Gender         string   `json:"gender"`
	Languages      []string `json:"languages"`
	HomePostalCode string   `json:"home_postal_code"`
	BankingOnFile  bool     `json:"banking_on_file"`
}

type workerProfileView struct {
	UserID         uint64   `json:"user_id"`
	DisplayName    string   `json:"display_name"`
	Phone          string   `json:"phone,omitempty"`
	PhotoURL       string   `json:"photo_url,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	Languages      []string `json:"languages"`
	HomePostalCode string   `json:"home_postal_code,omitempty"`
	BankingOnFile  bool     `json:"banking_on_file"`
}

func toProfileView(p *model.WorkerProfile) workerProfileView {
	return workerProfileView{
		UserID:         p.UserID,
		DisplayName:    p.DisplayName,
		Phone:          p.Phone,
		PhotoURL:       p.PhotoURL,
		Gender:         p.Gender,
		Languages:      p.Languages,
		HomePostalCode: p.HomePostalCode,
		BankingOnFile:  p.BankingOnFile,
	}
}

// Upsert handles PUT /v1/workers/me. The display name comes from the
// account, not the body, so profile edits cannot diverge from the
// registered identity.
func (h *WorkerProfileHandler) Upsert(c echo.Context) error {
	actor := middleware.CurrentActor(c)

	var req workerProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	gender := strings.ToUpper(strings.TrimSpace(req.Gender))
	switch gender {
	case "", model.GenderMale, model.GenderFemale, "OTHER", "PREFER_NOT_TO_SAY":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unrecognized gender value"})
	}

	p := &model.WorkerProfile{
		UserID:         actor.ID,
		DisplayName:    actor.Name,
		Phone:          strings.TrimSpace(req.Phone),
		PhotoURL:       strings.TrimSpace(req.PhotoURL),
		Gender:         gender,
		Languages:      req.Languages,
		HomePostalCode: strings.ToUpper(strings.TrimSpace(req.HomePostalCode)),
		BankingOnFile:  req.BankingOnFile,
	}
	if err := h.Workers.Upsert(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save profile failed"})
	}
	return c.JSON(http.StatusOK, toProfileView(p))
}

// Me handles GET /v1/workers/me.
func (h *WorkerProfileHandler) Me(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	p, err := h.Workers.GetByUserID(c.Request().Context(), actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no profile on file"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, toProfileView(p))
}
