package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tasklane/task-api/internal/core/ports"
	"github.com/tasklane/task-api/internal/infrastructure/db/mongo"
	"github.com/tasklane/task-api/internal/infrastructure/db/postgres"
	"github.com/tasklane/task-api/internal/pkg/config"
)

// store bundles the repositories of the selected backend with its lifecycle.
type store struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	activity ports.ActivityRepository
	ping     func(ctx context.Context) error
	close    func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return openPostgres(ctx, cfg.Postgres)
	case config.StoreMongo:
		return openMongo(ctx, cfg.Mongo, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*store, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.URI,
		Database:    cfg.Database,
		MaxPoolSize: cfg.MaxPoolSize,
		MinPoolSize: cfg.MinPoolSize,
	})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Debug().Str("database", cfg.Database).Msg("mongo indexes ensured")

	return &store{
		users:    mongo.NewUserRepository(db),
		tasks:    mongo.NewTaskRepository(db),
		activity: mongo.NewActivityRepository(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*store, error) {
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	return &store{
		users:    postgres.NewUserRepository(db),
		tasks:    postgres.NewTaskRepository(db),
		activity: postgres.NewActivityRepository(db),
		ping: func(ctx context.Context) error {
			return postgres.Ping(ctx, db)
		},
		close: func(context.Context) error {
			return postgres.Close(db)
		},
	}, nil
}
