package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bookly/booking-platform/internal/api/authctx"
	"github.com/bookly/booking-platform/internal/core/domain"
)

// principalFrom returns the principal attached by the Authenticate
// middleware, or the zero (anonymous) principal.
func principalFrom(c echo.Context) domain.Principal {
	p, _ := authctx.Principal(c.Request().Context())
	return p
}
