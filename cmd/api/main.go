package main

import (
	"fmt"
	"os"

	"finanzas/internal/config"
	"finanzas/internal/database"
	"finanzas/internal/handlers"
	"finanzas/internal/logger"
	"finanzas/internal/pagination"
	"finanzas/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	pagination.DefaultPageSize = appConfig.DefaultPageSize
	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	router := handlers.NewRouter(handlers.NewHandlers(dbManager.DB()))

	log.Infof("Starting finanzas server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
