// @title                      Tool Rental API
// @version                    1.0
// @description                Signup, login, catalog, orders and admin tool management.
// @BasePath                   /
// @securityDefinitions.apikey SessionToken
// @in                         header
// @name                       authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/toolrent/rental-system/internal/api"
	"github.com/toolrent/rental-system/internal/api/handler"
	"github.com/toolrent/rental-system/internal/core/ports"
	"github.com/toolrent/rental-system/internal/core/service"
	"github.com/toolrent/rental-system/internal/infrastructure/db/mongo"
	"github.com/toolrent/rental-system/internal/infrastructure/db/postgres"
	"github.com/toolrent/rental-system/internal/infrastructure/db/redis"
	"github.com/toolrent/rental-system/internal/infrastructure/queue"
	"github.com/toolrent/rental-system/internal/pkg/config"
	"github.com/toolrent/rental-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "toolrent-api",
	})

	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:      cfg.Postgres.URL,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	checks := map[string]handler.DependencyCheck{
		"postgres": pool.Ping,
	}

	users, mongoClient := userRepository(ctx, cfg, pool, log, checks)
	keys, redisClient := idempotencyStore(ctx, cfg, log, checks)

	hasher := queue.NewHashPool(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost, logger.Component("hash_pool"))
	// Outlives ctx so in-flight requests can finish hashing during shutdown.
	hashCtx, stopHashing := context.WithCancel(context.Background())
	defer stopHashing()
	hasher.Start(hashCtx)

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	rentals := postgres.NewRentalRepository(pool, cfg.Store.Timeout)
	tools := postgres.NewToolRepository(pool, cfg.Store.Timeout)

	deps := api.Deps{
		Auth:        service.NewAuthService(users, hasher, tokens, logger.Component("auth")),
		Catalog:     service.NewCatalogService(tools),
		Orders:      service.NewOrderService(rentals, keys, logger.Component("orders")),
		Admin:       service.NewAdminService(tools, rentals, logger.Component("admin")),
		Checks:      checks,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
		Registerer:  prometheus.DefaultRegisterer,
		Gatherer:    prometheus.DefaultGatherer,
	}
	e := api.NewRouter(deps)

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	waitForShutdown(log, e, pool, mongoClient, redisClient)
}

// userRepository selects the credential store named by STORE_DRIVER.
func userRepository(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log zerolog.Logger, checks map[string]handler.DependencyCheck) (ports.UserRepository, *mongodriver.Client) {
	if cfg.Store.Driver != config.DriverMongo {
		return postgres.NewUserRepository(pool, cfg.Store.Timeout), nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongodb")
	}
	repo := mongo.NewUserRepository(db, cfg.Store.Timeout)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongodb indexes")
	}
	checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	return repo, client
}

// idempotencyStore connects Redis when configured. Orders still work
// without it; Idempotency-Key headers are then ignored.
func idempotencyStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, checks map[string]handler.DependencyCheck) (service.IdempotencyStore, *goredis.Client) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR empty, idempotency keys disabled")
		return nil, nil
	}
	client, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		return nil, nil
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return redis.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL), client
}

func waitForShutdown(log zerolog.Logger, e *echo.Echo, pool *pgxpool.Pool, mongoClient *mongodriver.Client, redisClient *goredis.Client) {
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if err := e.Close(); err != nil {
			log.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect error")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}
	pool.Close()

	log.Info().Msg("server exited cleanly")
}
