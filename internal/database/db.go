package database

import (
	"fmt"

	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres database behind dsn and brings the schema up to date.
func Connect(dsn string, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Schema migrations applied")
	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Company{}, &models.Application{}, &models.UserRole{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
