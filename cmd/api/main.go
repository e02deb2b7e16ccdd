package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	_ "github.com/carsales/catalog-api/docs" // swagger docs
	"github.com/carsales/catalog-api/internal/api"
	"github.com/carsales/catalog-api/internal/api/handler"
	"github.com/carsales/catalog-api/internal/core/service"
	"github.com/carsales/catalog-api/internal/infrastructure/db/redis"
	"github.com/carsales/catalog-api/internal/infrastructure/store"
	"github.com/carsales/catalog-api/internal/pkg/config"
	"github.com/carsales/catalog-api/internal/pkg/token"
	"github.com/carsales/catalog-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Car Sales Catalog API
// @version 1.0
// @description Car listing catalog with public search, admin management and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Level: "error"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-api",
	})

	stores, err := store.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	defer stores.Close(context.Background())

	issuer := token.NewIssuer(token.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})

	authService, err := service.NewAuthService(stores.Accounts, issuer, cfg.Auth.BcryptCost, logger.Component("auth"))
	if err != nil {
		log.Fatal().Err(err).Msg("init auth service")
	}
	listingService := service.NewListingService(stores.Listings, logger.Component("listings"))

	readiness := map[string]handler.Pinger{"store": stores.Pinger}

	var limiter echomiddleware.RateLimiterStore
	switch {
	case cfg.HTTP.RateLimitPerMinute <= 0:
		log.Info().Msg("auth rate limiting disabled")
	case cfg.Redis.Addr != "":
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, using in-process rate limiter")
			break
		}
		defer rdb.Close()
		limiter = redis.NewRateLimiter(rdb, "auth", cfg.HTTP.RateLimitPerMinute, time.Minute, logger.Component("ratelimit"))
		readiness["redis"] = redis.NewPinger(rdb)
	}
	if limiter == nil && cfg.HTTP.RateLimitPerMinute > 0 {
		limiter = echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.HTTP.RateLimitPerMinute) / 60),
			Burst:     cfg.HTTP.RateLimitPerMinute,
			ExpiresIn: 3 * time.Minute,
		})
	}

	e := api.NewRouter(api.Deps{
		AuthService:    authService,
		ListingService: listingService,
		Verifier:       issuer,
		RateLimitStore: limiter,
		Readiness:      readiness,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
