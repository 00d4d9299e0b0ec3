package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/agromarket/marketplace-api/docs"
	"github.com/agromarket/marketplace-api/internal/api/handler"
	"github.com/agromarket/marketplace-api/internal/api/middleware"
	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
	"github.com/agromarket/marketplace-api/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Products ports.ProductService
	// Health lists the dependencies pinged by the readiness probe.
	Health []handlers.Dependency
	Logger zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics and /metrics. Nil uses
	// the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "marketplace",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authn := middleware.Authenticate(d.Auth, d.Logger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	producerOnly := middleware.RequireRole(domain.RoleProducer)

	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	productHandler := handler.NewProductHandler(d.Products)

	// --- Auth ---
	e.POST("/token", authHandler.Login)

	// --- Users ---
	for _, root := range []string{"/usuarios", "/usuarios/"} {
		e.POST(root, userHandler.Register)
		e.GET(root, userHandler.List, authn, adminOnly)
	}
	e.GET("/usuarios/me", userHandler.Me, authn)
	e.DELETE("/usuarios/:id", userHandler.Delete, authn, adminOnly)

	// --- Products ---
	for _, root := range []string{"/produtos", "/produtos/"} {
		e.GET(root, productHandler.List)
		e.POST(root, productHandler.Create, authn, producerOnly)
	}
	e.GET("/produtos/me", productHandler.Mine, authn, producerOnly)
	e.GET("/produtos/:id", productHandler.Get)
	// Ownership is checked in the service after the existence check.
	e.PUT("/produtos/:id", productHandler.Update, authn)
	e.DELETE("/produtos/:id", productHandler.Delete, authn)

	// --- Health probes, metrics, docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Health...)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
