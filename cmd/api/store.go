package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agromarket/marketplace-api/internal/core/ports"
	"github.com/agromarket/marketplace-api/internal/infrastructure/config"
	"github.com/agromarket/marketplace-api/internal/infrastructure/db/memory"
	mongostore "github.com/agromarket/marketplace-api/internal/infrastructure/db/mongo"
	mysqlstore "github.com/agromarket/marketplace-api/internal/infrastructure/db/mysql"
	"github.com/agromarket/marketplace-api/internal/infrastructure/http/handlers"
)

// store is the repository pair for the configured driver plus its teardown.
type store struct {
	users    ports.UserRepository
	products ports.ProductRepository
	health   []handlers.Dependency
	close    func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		db, err := mysqlstore.Connect(ctx, mysqlstore.Config{DSN: cfg.MySQL.DSN})
		if err != nil {
			return nil, err
		}
		if err := mysqlstore.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("connected to mysql")
		return &store{
			users:    mysqlstore.NewUserRepository(db),
			products: mysqlstore.NewProductRepository(db),
			health:   []handlers.Dependency{{Name: "mysql", Ping: db.PingContext}},
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("failed to close mysql pool")
				}
			},
		}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return &store{
			users:    mongostore.NewUserRepository(db),
			products: mongostore.NewProductRepository(db),
			health: []handlers.Dependency{{
				Name: "mongo",
				Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			}},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Warn().Err(err).Msg("failed to disconnect mongo")
				}
			},
		}, nil

	case config.DriverMemory:
		mem := memory.NewStore()
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &store{
			users:    mem.Users(),
			products: mem.Products(),
			health:   []handlers.Dependency{{Name: "memory", Ping: mem.Ping}},
			close:    func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
