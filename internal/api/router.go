package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bookly/booking-platform/docs"
	"github.com/bookly/booking-platform/internal/api/handler"
	"github.com/bookly/booking-platform/internal/api/middleware"
	"github.com/bookly/booking-platform/internal/core/domain"
	"github.com/bookly/booking-platform/internal/core/ports"
	"github.com/bookly/booking-platform/pkg/logger"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Log    zerolog.Logger
	Tokens ports.AccessTokenValidator
	Auth   ports.AuthService
	Users  ports.UserService

	Cookie handler.CookieConfig
	Checks map[string]handler.DependencyCheck

	// Registry receives the HTTP metrics. Defaults to the global registry.
	Registry *prometheus.Registry
}

// AccessPolicy is the route policy of the API. Routes not listed are public.
func AccessPolicy() middleware.Policy {
	return middleware.Policy{
		middleware.Rule(http.MethodGet, "/v1/users/me"):                     {},
		middleware.Rule(http.MethodPatch, "/v1/admin/masters/:id/activate"): {domain.RoleAdmin},
	}
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "booking",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// Authenticate never rejects; Authorize applies the route policy.
	e.Use(middleware.Authenticate(deps.Tokens, deps.Cookie.Name))
	e.Use(middleware.Authorize(AccessPolicy()))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Account routes ---
	userHandler := handler.NewUserHandler(deps.Users)
	e.GET("/v1/users/me", userHandler.Me)
	e.PATCH("/v1/admin/masters/:id/activate", userHandler.ActivateMaster)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
