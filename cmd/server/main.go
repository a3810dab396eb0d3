package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/citymove/identity-service/internal/api"
	"github.com/citymove/identity-service/internal/core/ports"
	"github.com/citymove/identity-service/internal/core/service"
	mongodb "github.com/citymove/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/citymove/identity-service/internal/infrastructure/db/redis"
	"github.com/citymove/identity-service/internal/infrastructure/queue"
	"github.com/citymove/identity-service/internal/infrastructure/ratelimit"
	"github.com/citymove/identity-service/internal/pkg/config"
	"github.com/citymove/identity-service/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "identity-service",
		Pretty:  cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect error")
		}
	}()

	accountRepo := mongodb.NewAccountRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("account index creation failed")
	}
	if err := roleRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("role index creation failed")
	}

	// --- Rate limiter (redis = shared across instances, memory = per instance) ---
	var (
		limiter     ports.RateLimiter
		redisClient *redis.Client
	)
	switch cfg.RateLimit.Backend {
	case "redis":
		redisClient, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("redis close error")
			}
		}()
		limiter = redisdb.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	default:
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}

	// --- Services ---
	scoreService := service.NewScoreService(accountRepo, roleRepo, log)
	scoreQueue := queue.NewScoreQueue(0, scoreService, log)
	scoreQueue.Start(ctx)

	provisioner := service.NewProvisioner(roleRepo, log)
	registrar := service.NewRegistrationService(accountRepo, roleRepo, provisioner, limiter, scoreQueue, log)
	authService := service.NewAuthService(accountRepo, roleRepo, cfg.JWTSecret, cfg.TokenTTL)
	adminService := service.NewAdminService(accountRepo, roleRepo, provisioner, scoreQueue, log)

	total, err := accountRepo.Count(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("account count unavailable")
	} else {
		log.Info().Int64("accounts", total).Msg("account store ready")
	}

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Registrar: registrar,
		Auth:      authService,
		Admin:     adminService,
		Accounts:  accountRepo,
		Roles:     roleRepo,
		Scorer:    scoreService,
		Mongo:     db,
		Redis:     redisClient,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}
