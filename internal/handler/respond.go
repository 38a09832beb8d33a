package handler // HTTP handlers for the PSW staffing API

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/service"
)

// serviceError maps the service error taxonomy onto HTTP responses so
// clients can render a specific message: 404 for unknown shifts, 409
// for lost races and wrong-state transitions, 403 for the wrong actor
// and 400 for rejected input.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
	case errors.Is(err, service.ErrShiftConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "shift is not in the required state"})
	case errors.Is(err, service.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		if msg, ok := service.IsValidation(err); ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
