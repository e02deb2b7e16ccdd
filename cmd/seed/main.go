package main

import (
	"context"
	"errors"
	"os"

	"github.com/shopspring/decimal"

	"github.com/carsales/catalog-api/internal/core/ports"
	"github.com/carsales/catalog-api/internal/core/service"
	"github.com/carsales/catalog-api/internal/infrastructure/store"
	"github.com/carsales/catalog-api/internal/pkg/config"
	"github.com/carsales/catalog-api/internal/pkg/token"
	"github.com/carsales/catalog-api/pkg/logger"
)

var sampleListings = []ports.ListingInput{
	{Make: "Toyota", Model: "Camry", Year: 2015, Price: decimal.NewFromInt(12000), Mileage: 85000, Description: "Reliable midsize sedan, single owner."},
	{Make: "Honda", Model: "Civic", Year: 2018, Price: decimal.NewFromInt(15000), Mileage: 45000, Description: "Compact and fuel efficient, full service history."},
	{Make: "Ford", Model: "F-150", Year: 2016, Price: decimal.NewFromInt(25000), Mileage: 95000, Description: "Full-size pickup with tow package."},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Level: "error"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-seed",
	})

	stores, err := store.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	defer stores.Close(ctx)

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

	normalized, err := authService.NormalizeStoredEmails(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("normalize stored emails")
	}
	log.Info().Int("updated", normalized).Msg("stored emails normalized")

	if err := seedAdmin(ctx, authService, cfg.Bootstrap); err != nil {
		log.Error().Err(err).Msg("seed admin")
		stores.Close(ctx)
		os.Exit(1)
	}

	if !cfg.Bootstrap.SeedSampleListings {
		log.Info().Msg("sample listings disabled")
		return
	}
	listingService := service.NewListingService(stores.Listings, logger.Component("listings"))
	created, err := seedListings(ctx, stores.Listings, listingService)
	if err != nil {
		log.Error().Err(err).Msg("seed listings")
		stores.Close(ctx)
		os.Exit(1)
	}
	log.Info().Int("created", created).Msg("seed completed")
}

type adminEnsurer interface {
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

// seedAdmin creates the bootstrap admin when no Admin account exists. The
// password has no default and must come from ADMIN_PASSWORD.
func seedAdmin(ctx context.Context, auth adminEnsurer, cfg config.BootstrapConfig) error {
	if cfg.AdminPassword == "" {
		// Succeeds only when an admin already exists.
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, ""); err != nil {
			return errors.New("ADMIN_PASSWORD is required to create the first admin account")
		}
		return nil
	}
	created, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log := logger.Component("seed")
		log.Info().Str("email", cfg.AdminEmail).Msg("bootstrap admin created")
	}
	return nil
}

// seedListings inserts the sample catalog only into an empty store.
func seedListings(ctx context.Context, repo ports.ListingRepository, svc ports.ListingService) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i, in := range sampleListings {
		if _, err := svc.Create(ctx, in); err != nil {
			return i, err
		}
	}
	return len(sampleListings), nil
}
