package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/scentarena/fragrance-battle-backend/config"
	"github.com/scentarena/fragrance-battle-backend/internal/app/controller"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	"github.com/scentarena/fragrance-battle-backend/internal/db"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
	"github.com/scentarena/fragrance-battle-backend/internal/router"
	"github.com/scentarena/fragrance-battle-backend/internal/scheduler"
	"github.com/scentarena/fragrance-battle-backend/internal/storage"
	ws "github.com/scentarena/fragrance-battle-backend/internal/websocket"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"github.com/scentarena/fragrance-battle-backend/pkg/ratelimit"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Fragrance Battle Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Rate limit counters live in Redis when it is enabled so every
	// instance shares the same windows, otherwise in process memory.
	var counterStore ratelimit.CounterStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		counterStore = ratelimit.NewRedisStore(redisClient)
		logger.Info("Using Redis rate limit store", map[string]interface{}{
			"host": cfg.Redis.Host,
			"port": cfg.Redis.Port,
		})
	} else {
		counterStore = ratelimit.NewMemoryStore()
		logger.Info("Using in-memory rate limit store", nil)
	}

	apiLimiter := ratelimit.NewLimiter(counterStore, cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowDuration)
	aiLimiter := ratelimit.NewLimiter(counterStore, cfg.RateLimit.AIMaxRequests, cfg.RateLimit.WindowDuration)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	fragranceRepo := repository.NewFragranceRepository(db.GetDB())
	collectionRepo := repository.NewCollectionRepository(db.GetDB())
	battleRepo := repository.NewBattleRepository(db.GetDB())
	feedbackRepo := repository.NewFeedbackRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	fragranceService := service.NewFragranceService(fragranceRepo)
	collectionService := service.NewCollectionService(collectionRepo, fragranceRepo)
	battleService := service.NewBattleService(battleRepo, fragranceRepo)
	aiService := service.NewAIService(&cfg.OpenAI, fragranceRepo, feedbackRepo)
	userService := service.NewUserService(userRepo, collectionRepo, battleRepo)
	adminService := service.NewAdminService(userRepo, fragranceRepo, battleRepo, feedbackRepo)
	popularityService := service.NewPopularityService(fragranceRepo, battleRepo, collectionRepo)

	// Live battle streams
	hub := ws.NewHub()
	go hub.Run()

	// S3 image uploads
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	fragranceController := controller.NewFragranceController(fragranceService)
	collectionController := controller.NewCollectionController(collectionService)
	battleController := controller.NewBattleController(battleService, hub)
	aiController := controller.NewAIController(aiService)
	userController := controller.NewUserController(userService)
	adminController := controller.NewAdminController(adminService, s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Nightly popularity recalculation
	popularityScheduler := scheduler.NewPopularityScheduler(popularityService)
	if err := popularityScheduler.Start(); err != nil {
		logger.Fatal("Failed to start popularity scheduler", err)
	}
	defer popularityScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		fragranceController,
		collectionController,
		battleController,
		aiController,
		userController,
		adminController,
		authMiddleware,
		apiLimiter,
		aiLimiter,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
