package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/shankarmishra/PLAYINDIA-sub002/docs"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/handler"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router needs, built once in main.
type Dependencies struct {
	Log      zerolog.Logger
	Sessions ports.SessionService
	Cookie   middleware.SessionCookie
	// RateLimiter guards /api. Nil disables inbound rate limiting.
	RateLimiter *middleware.RateLimiter
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer

	Auth         *handler.AuthHandler
	Registration *handler.RegistrationHandler
	Dashboard    *handler.DashboardHandler
	Status       *handler.StatusHandler
	Proxy        *handler.ProxyHandler
	Validate     *handler.ValidateHandler

	Health      *handlers.HealthHandler
	HealthReady *handlers.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper:    skipOperational,
	}))

	// --- Operational routes (no session) ---
	e.GET("/health", d.Health.Liveness)
	e.GET("/health/ready", d.HealthReady.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	session := middleware.Session(d.Sessions, d.Cookie, d.Log)
	requireToken := middleware.RequireToken()

	// --- Pages ---
	e.GET("/dashboard/:role", d.Dashboard.Get, session)

	// --- API ---
	// The limiter runs first so throttled requests never reach Redis for the
	// session lookup.
	apiGroup := e.Group("/api")
	if d.RateLimiter != nil {
		apiGroup.Use(d.RateLimiter.Middleware())
	}
	apiGroup.Use(session)

	apiGroup.POST("/register/:role", d.Registration.RegisterRole)
	apiGroup.POST("/auth/register", d.Registration.Register)
	apiGroup.POST("/auth/login", d.Auth.Login)
	apiGroup.POST("/auth/logout", d.Auth.Logout)
	apiGroup.GET("/auth/session", d.Auth.Session, requireToken)

	apiGroup.GET("/account/status", d.Status.Current, requireToken)
	apiGroup.GET("/account/status/stream", d.Status.Stream, requireToken)

	apiGroup.Any("/proxy/:group/*", d.Proxy.Forward)
	apiGroup.Any("/proxy/:group", d.Proxy.Forward)

	apiGroup.POST("/validate/:form", d.Validate.Validate)

	return e
}

func skipOperational(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}
