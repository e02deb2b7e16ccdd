package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/carsales/catalog-api/internal/api/handler"
	"github.com/carsales/catalog-api/internal/api/middleware"
	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	AuthService    ports.AuthService
	ListingService ports.ListingService
	Verifier       middleware.TokenVerifier
	// RateLimitStore throttles register and login per client IP. Nil disables it.
	RateLimitStore echomiddleware.RateLimiterStore
	Readiness      map[string]handler.Pinger
	AllowedOrigins []string
	Logger         zerolog.Logger
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "carsales",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	listingHandler := handler.NewListingHandler(d.ListingService)
	adminHandler := handler.NewAdminListingHandler(d.ListingService)
	requireAuth := middleware.Auth(d.Verifier)

	var throttle []echo.MiddlewareFunc
	if d.RateLimitStore != nil {
		throttle = append(throttle, rateLimiter(d.RateLimitStore))
	}

	// --- Probes, metrics, docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness, d.Logger)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth ---
	api.POST("/auth/register", authHandler.Register, throttle...)
	api.POST("/auth/login", authHandler.Login, throttle...)
	api.GET("/auth/me", authHandler.Me, requireAuth)

	// --- Public catalog ---
	api.GET("/cars", listingHandler.Search)
	api.GET("/cars/:id", listingHandler.Get)

	// --- Admin catalog ---
	admin := api.Group("/admin", requireAuth, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/cars", adminHandler.List)
	admin.GET("/cars/:id", adminHandler.Get)
	admin.POST("/cars", adminHandler.Create)
	admin.PUT("/cars/:id", adminHandler.Update)
	admin.DELETE("/cars/:id", adminHandler.Delete)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func rateLimiter(store echomiddleware.RateLimiterStore) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(_ echo.Context, _ string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests").SetInternal(err)
		},
	})
}
