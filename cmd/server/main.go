//	@title			Course Platform API
//	@version		1.0
//	@description	Courses, modules, lessons, enrollments and progress tracking.

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.

//go:generate swag init --dir ../../ --generalInfo cmd/server/main.go --output ../../docs --outputTypes go,json --overridesFile ../../.swaggo

package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/courseplatform/internal/bootstrap"
	"anoa.com/courseplatform/internal/config"
	"anoa.com/courseplatform/internal/server"
	"anoa.com/courseplatform/pkg/database"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/storage"
	"anoa.com/courseplatform/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLogger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to init tracing", "error", err)
	}

	db, err := database.Connect(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to connect database", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		appLogger.Fatal("migration failed", "error", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		appLogger.Fatal("failed to seed roles", "error", err)
	}
	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdminUser(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword, appLogger); err != nil {
			appLogger.Fatal("failed to seed admin user", "error", err)
		}
	}

	redisClient := connectRedis(ctx, cfg, appLogger)

	imageStorage, err := storage.NewCloudinaryStorage(cfg)
	if err != nil {
		appLogger.Warn("cloudinary storage disabled, thumbnail uploads will fail", "error", err)
		imageStorage = nil
	}

	srv, err := server.NewServer(cfg, db, redisClient, imageStorage, appLogger)
	if err != nil {
		appLogger.Fatal("failed to build server", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Error("server exited with error", "error", err)
		}
	case <-ctx.Done():
		appLogger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("tracer shutdown failed", "error", err)
	}
}

// connectRedis returns nil when REDIS_URL is unset or unreachable.
func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, lesson count cache and rate limiting are disabled")
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("invalid REDIS_URL", "error", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, continuing without it", "error", err)
		_ = client.Close()
		return nil
	}

	log.Info("connected to redis", "addr", opts.Addr)
	return client
}
