// Package store opens the persistence adapter selected by configuration and
// exposes it through the repository ports.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/carsales/catalog-api/internal/core/ports"
	"github.com/carsales/catalog-api/internal/infrastructure/db/mongo"
	"github.com/carsales/catalog-api/internal/infrastructure/db/sqldb"
	"github.com/carsales/catalog-api/internal/pkg/config"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores bundles the repositories of one backend.
type Stores struct {
	Accounts ports.AuthRepository
	Listings ports.ListingRepository
	Pinger   Pinger

	close func(ctx context.Context) error
}

// Open connects to the configured backend and prepares its schema: tables
// for SQL drivers, indexes for MongoDB.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	if cfg.UsesMongo() {
		return openMongo(ctx, cfg, log)
	}
	return openSQL(ctx, cfg, log)
}

// Close releases the underlying connections.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

func openSQL(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() && strings.EqualFold(cfg.LogLevel, "debug") {
		level = gormlogger.Info
	}

	db, err := sqldb.Open(sqldb.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN, LogLevel: level})
	if err != nil {
		return nil, err
	}
	if err := sqldb.Migrate(ctx, db); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}

	log.Info().Str("driver", cfg.Store.Driver).Msg("sql store ready")
	return &Stores{
		Accounts: sqldb.NewAuthRepository(db),
		Listings: sqldb.NewListingRepository(db),
		Pinger:   sqldb.NewPinger(db),
		close:    func(context.Context) error { return sqlDB.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
	return &Stores{
		Accounts: mongo.NewAuthRepository(db),
		Listings: mongo.NewListingRepository(db),
		Pinger:   mongo.NewPinger(client),
		close:    client.Disconnect,
	}, nil
}
