package db

import (
	"github.com/tagsy/tagsy-backend/internal/app/model"
	"github.com/tagsy/tagsy-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate ensures the tags schema exists. Safe to run on every process start;
// AutoMigrate never drops existing data.
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	if err := database.AutoMigrate(&model.Tag{}); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
