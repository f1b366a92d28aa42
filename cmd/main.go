package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Data-Dreamersambit/Audio-Player/internal/config"
	"github.com/Data-Dreamersambit/Audio-Player/internal/database"
	"github.com/Data-Dreamersambit/Audio-Player/internal/handlers"
	"github.com/Data-Dreamersambit/Audio-Player/internal/middleware"
	"github.com/Data-Dreamersambit/Audio-Player/internal/repository"
	"github.com/Data-Dreamersambit/Audio-Player/internal/routes"
	"github.com/Data-Dreamersambit/Audio-Player/internal/services"
	"github.com/Data-Dreamersambit/Audio-Player/internal/storage"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

func main() {
	// load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	// logger
	logger, err := utils.NewLogger(dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Mongo
	mc, err := database.ConnectMongo(context.Background(), cfg.Mongo.URI)
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	db := mc.Database(cfg.Mongo.Database)
	audioRepo := repository.NewMongoAudioRepo(db)
	commentRepo := repository.NewMongoCommentRepo(db)
	userRepo := repository.NewMongoUserRepo(db)

	// Redis (rate limiting)
	rc, err := database.ConnectRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("redis connect: %v", err)
	}

	// S3 media store
	store, err := storage.NewS3Store(context.Background(), cfg.AWS.Region, cfg.AWS.Bucket)
	if err != nil {
		logger.Fatalf("s3 init: %v", err)
	}

	// services
	catalog := services.NewCatalogService(audioRepo, commentRepo, userRepo, store)
	engagement := services.NewEngagementService(audioRepo, commentRepo, userRepo)
	accounts := services.NewAccountService(userRepo, audioRepo, commentRepo, store, logger, cfg.JWT.Secret, cfg.TokenTTL)

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    500 * 1024 * 1024, // audio uploads
	})
	app.Use(middleware.Recovery(logger))
	app.Use(middleware.RequestLogger(logger))

	limiter := middleware.NewRateLimiter(rc, "auth_rate_limit", cfg.RateLimit.Limit, cfg.RateLimitWindow)
	audioHandler := handlers.NewAudioHandler(catalog, engagement)
	authHandler := handlers.NewAuthHandler(accounts, dev)
	routes.Register(app, audioHandler, authHandler, cfg.JWT.Secret, limiter)

	// start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("starting audio service on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	_ = app.Shutdown()
	_ = rc.Close()
	_ = mc.Disconnect(timeoutCtx)
	logger.Info("shutdown completed")
}
