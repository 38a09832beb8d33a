package middleware

// identity.go translates the raw JWT claims stored in the Echo context
// into typed values: the service.Actor consumed by every lifecycle
// operation, and the string user id the rate limiter keys on.

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/tiffarshi-web/pswdirect/internal/service"
)

// CurrentActor builds the acting identity from the claims JWTAuth put
// in the context. An unauthenticated request yields a zero Actor,
// which no operation authorizes.
func CurrentActor(c echo.Context) service.Actor {
	a := service.Actor{}
	switch v := c.Get("user_id").(type) {
	case float64: // MapClaims decode numbers as float64
		a.ID = uint64(v)
	case uint64:
		a.ID = v
	}
	if role, ok := c.Get("role").(string); ok {
		a.Role = role
	}
	if name, ok := c.Get("name").(string); ok {
		a.Name = name
	}
	return a
}

// currentUserID returns the caller's id as a string for rate-limit
// keying, or "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case float64:
		return fmt.Sprintf("%.0f", v)
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
