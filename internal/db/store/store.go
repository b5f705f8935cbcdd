// Package store opens the document store selected by configuration.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"Connector/internal/config"
	"Connector/internal/core/posts"
	"Connector/internal/core/users"
	"Connector/internal/db/memory"
	"Connector/internal/db/mongodb"
	"Connector/internal/db/postgres"
)

// Store bundles the repositories of one driver with its teardown
type Store struct {
	Posts posts.Repository
	Users users.UserRepository

	closer func(ctx context.Context) error
}

// Close releases the driver connection
func (s *Store) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

// Open connects the driver named in cfg. Postgres migrations and Mongo
// indexes are applied before the store is returned.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.OperationTimeout

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("connected to postgres")
		return &Store{
			Posts:  postgres.NewPostRepository(db, timeout),
			Users:  postgres.NewUserRepository(db, timeout),
			closer: func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
		return &Store{
			Posts:  mongodb.NewPostRepository(client.Database(), timeout),
			Users:  mongodb.NewUserRepository(client.Database(), timeout),
			closer: client.Close,
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return &Store{
			Posts: memory.NewPostRepository(),
			Users: memory.NewUserRepository(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
