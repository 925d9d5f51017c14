package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bookly/booking-platform/internal/api/authctx"
	"github.com/bookly/booking-platform/internal/api/metrics"
	"github.com/bookly/booking-platform/internal/core/domain"
)

// Policy maps "METHOD /route/:template" to the roles allowed on it.
// Routes missing from the table are public. A route mapped to an empty
// role set admits any authenticated principal.
type Policy map[string][]domain.Role

// Rule returns the policy key for a method and echo route template.
func Rule(method, path string) string {
	return method + " " + path
}

// Authorize enforces policy using the principal set by Authenticate. A
// missing principal yields domain.ErrUnauthenticated and a principal without
// a required role yields domain.ErrForbidden; the HTTP error handler turns
// them into 401 and 403.
func Authorize(policy Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, protected := policy[Rule(c.Request().Method, c.Path())]
			if !protected {
				return next(c)
			}

			principal, ok := authctx.Principal(c.Request().Context())
			if !ok {
				metrics.AuthorizationDeniedTotal.WithLabelValues("401").Inc()
				return domain.ErrUnauthenticated
			}
			if len(roles) > 0 && !principal.HasAnyRole(roles...) {
				metrics.AuthorizationDeniedTotal.WithLabelValues("403").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
