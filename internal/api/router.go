package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/citymove/identity-service/internal/api/handler"
	"github.com/citymove/identity-service/internal/api/middleware"
	"github.com/citymove/identity-service/internal/core/domain"
	"github.com/citymove/identity-service/internal/core/ports"
)

// Deps carries the constructed services and infrastructure handles the
// router wires into handlers. Redis may be nil when the in-process rate
// limiter is configured.
type Deps struct {
	Registrar ports.RegistrationService
	Auth      ports.AuthService
	Admin     ports.AdminService
	Accounts  ports.AccountRepository
	Roles     ports.RoleRepository
	Scorer    ports.ScoreService

	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Registrar, deps.Auth)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Roles, deps.Scorer)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Account routes (authenticated; admin-or-self enforced in handler) ---
	accounts := e.Group("/v1/accounts", authMiddleware)
	accounts.GET("/:id", accountHandler.Get)
	accounts.POST("/:id/score", accountHandler.RecomputeScore)

	// --- Admin routes ---
	admin := e.Group("/v1/admin", authMiddleware, middleware.RBAC(string(domain.RoleAdmin)))
	admin.POST("/accounts/bulk", adminHandler.BulkAction)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
