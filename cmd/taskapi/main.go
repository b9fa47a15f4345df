// @title           Task API
// @version         1.0
// @description     Personal task management: registration, login and owner-scoped tasks with soft delete.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tasklane/task-api/internal/api"
	"github.com/tasklane/task-api/internal/api/handler"
	"github.com/tasklane/task-api/internal/core/ports"
	"github.com/tasklane/task-api/internal/core/service"
	"github.com/tasklane/task-api/internal/infrastructure/db/redis"
	"github.com/tasklane/task-api/internal/infrastructure/queue"
	"github.com/tasklane/task-api/internal/pkg/config"
	"github.com/tasklane/task-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	checks := map[string]handler.Checker{cfg.StoreDriver: st.ping}

	var idem ports.IdempotencyStore
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, idempotent create disabled")
	} else {
		idem = redis.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb, 0) }
	}

	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, st.activity, logger.For(log, "activity"))
	workerCtx, stopWorkers := context.WithCancel(ctx)
	dispatcher.Start(workerCtx)

	credentials := service.NewCredentialService(cfg.JWTSecret, cfg.BcryptCost)
	authService := service.NewAuthService(st.users, credentials, logger.For(log, "auth"))
	taskService := service.NewTaskService(st.tasks, st.users, dispatcher, idem, logger.For(log, "tasks"))

	e := api.NewRouter(api.Dependencies{
		Log:      log,
		Auth:     authService,
		Tasks:    taskService,
		Verifier: credentials,
		Checks:   checks,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	// One operation keeps the order: stop accepting requests, drain the
	// activity queue, then release the stores the workers write to.
	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"task-api": func(ctx context.Context) error {
			defer stopWorkers()
			return errors.Join(
				e.Shutdown(ctx),
				dispatcher.Stop(ctx),
				st.close(ctx),
				closeRedis(rdb),
			)
		},
	})

	code := <-wait
	log.Info().Int("exit_code", code).Msg("shutdown complete")
	os.Exit(code)
}

func closeRedis(rdb *goredis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}
