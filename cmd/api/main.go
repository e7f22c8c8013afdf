package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/configs"
	v1 "taskhub/internal/api/v1"
	"taskhub/internal/api/v1/handlers"
	"taskhub/internal/cache"
	"taskhub/internal/config"
	"taskhub/internal/middleware"
	"taskhub/internal/repository"
	"taskhub/internal/scheduler"
	myws "taskhub/internal/websocket"
	"taskhub/pkg/database"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	logger.InitLoggers(cfg.LogDir)
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("time", time.Now().Format(time.RFC3339)), zap.String("env", cfg.AppEnv))

	// Inisialisasi database
	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected", zap.String("driver", cfg.DBDriver))

	// Buat tabel jika belum ada
	if err := repository.CreateTableIfNotExists(db, cfg.DBDriver); err != nil {
		logger.ErrorLogger.Fatal("Error creating tables", zap.Error(err))
	}

	// Redis is optional; without it every read goes to the database
	var c cache.Cache = cache.Noop{}
	if cfg.RedisEnabled {
		client, err := database.ConnectRedis(context.Background(), cfg)
		if err != nil {
			logger.ErrorLogger.Error("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer client.Close()
			c = cache.NewRedisCache(client)
			logger.SystemLogger.Info("Redis Connected")
		}
	}

	hub := myws.NewHub()
	go hub.Run()
	defer hub.Close()

	deps := config.NewDependencies(cfg, db, c, hub)
	if err := repository.SeedDefaultCategories(context.Background(), deps.Categories); err != nil {
		logger.ErrorLogger.Fatal("Error seeding default categories", zap.Error(err))
	}

	jobs := scheduler.New()
	if _, err := jobs.ScheduleInvitationSweep(cfg.InvitationSweep, deps.Invitations); err != nil {
		logger.ErrorLogger.Fatal("Invalid invitation sweep schedule",
			zap.String("spec", cfg.InvitationSweep), zap.Error(err))
	}
	jobs.Start()
	defer jobs.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.JSONErrorHandler,
		BodyLimit:    handlers.MaxAvatarSize + 1<<20,
	})

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	v1.RegisterRoutes(app, handlers.New(deps))

	go func() {
		logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.SystemLogger.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.ErrorLogger.Error("Error during shutdown", zap.Error(err))
	}
}
