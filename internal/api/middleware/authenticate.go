package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookly/booking-platform/internal/api/authctx"
	"github.com/bookly/booking-platform/internal/api/metrics"
	"github.com/bookly/booking-platform/internal/core/domain"
	"github.com/bookly/booking-platform/internal/core/ports"
)

// DefaultAccessCookie is the cookie the access token is delivered in.
const DefaultAccessCookie = "accessToken"

// Authenticate resolves the caller from a bearer token and attaches a
// principal to the request context. It never rejects a request: a missing
// or invalid token just leaves the request anonymous, and Authorize decides
// whether that is acceptable for the route.
func Authenticate(tokens ports.AccessTokenValidator, cookieName string) echo.MiddlewareFunc {
	if cookieName == "" {
		cookieName = DefaultAccessCookie
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c, cookieName)
			if raw == "" {
				metrics.RequestAuthTotal.WithLabelValues("anonymous").Inc()
				return next(c)
			}

			if !tokens.ValidateAccessToken(raw) {
				metrics.RequestAuthTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}
			claims, err := tokens.ExtractAccessClaims(raw)
			if err != nil {
				metrics.RequestAuthTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			principal := domain.Principal{
				Authenticated: true,
				Subject:       claims.Subject,
				Roles:         []domain.Role{claims.Role},
			}
			req := c.Request()
			c.SetRequest(req.WithContext(authctx.WithPrincipal(req.Context(), principal)))

			metrics.RequestAuthTotal.WithLabelValues("authenticated").Inc()
			return next(c)
		}
	}
}

// bearerToken looks in the cookie first, then in the Authorization header.
func bearerToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
