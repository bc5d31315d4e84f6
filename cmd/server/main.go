package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tagsy/tagsy-backend/config"
	"github.com/tagsy/tagsy-backend/internal/app/controller"
	"github.com/tagsy/tagsy-backend/internal/app/repository"
	"github.com/tagsy/tagsy-backend/internal/app/service"
	"github.com/tagsy/tagsy-backend/internal/cache"
	"github.com/tagsy/tagsy-backend/internal/db"
	"github.com/tagsy/tagsy-backend/internal/middleware"
	"github.com/tagsy/tagsy-backend/internal/router"
	"github.com/tagsy/tagsy-backend/internal/scheduler"
	"github.com/tagsy/tagsy-backend/internal/storage"
	"github.com/tagsy/tagsy-backend/internal/websocket"
	"github.com/tagsy/tagsy-backend/pkg/logger"
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

	logger.Info("Starting Tagsy engine", map[string]interface{}{
		"environment":    cfg.Server.Environment,
		"port":           cfg.Server.Port,
		"log_level":      logLevel,
		"trigger_prefix": cfg.Trigger.Prefix,
	})

	// Initialize database
	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Optional redis cache
	var tagCache *cache.TagCache
	if cfg.Redis.Enabled {
		tagCache, err = cache.New(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize redis cache", err)
		}
		defer tagCache.Close()
	} else {
		logger.Info("Redis disabled, running without tag cache")
	}

	// Optional export archival
	var archive *storage.S3Storage
	if cfg.Export.S3Enabled {
		archive = storage.NewS3Storage(
			cfg.Export.S3Region,
			cfg.Export.S3Bucket,
			cfg.Export.AccessKeyID,
			cfg.Export.SecretAccessKey,
		)
	}

	// Initialize repositories
	tagRepo := repository.NewTagRepository(database)

	// Initialize services
	tagService := service.NewTagService(tagRepo, tagCache)
	scanner := service.NewTriggerScanner(tagService, &cfg.Trigger)
	exportService := service.NewExportService(tagRepo, archive)

	// Initialize controllers
	tagController := controller.NewTagController(tagService)
	eventController := controller.NewEventController(scanner)
	maintenanceController := controller.NewMaintenanceController(exportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.ServiceTokenSecret, cfg.Auth.OwnerKeyHash)

	// Gateway event stream
	hub := websocket.NewHub(scanner)
	go hub.Run()

	// Popularity snapshots need redis
	var popularity *scheduler.PopularityScheduler
	if tagCache != nil {
		popularity = scheduler.NewPopularityScheduler(tagRepo, tagCache.Client())
		if err := popularity.Start(); err != nil {
			logger.Fatal("Failed to start popularity scheduler", err)
		}
		defer popularity.Stop()
	}

	// Setup router
	r := router.NewRouter(
		tagController,
		eventController,
		maintenanceController,
		hub,
		authMiddleware,
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
